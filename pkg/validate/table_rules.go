package validate

import (
	"strings"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// datasetSummary records a dataset-level outcome. A failure counts every
// row so that error rate stays count over rows.
func datasetSummary(t frame.Table, k Kind, expected []string, offending []string) SummaryRow {
	row := SummaryRow{Column: AllColumns, Type: k, Rule: "[" + strings.Join(expected, ", ") + "]", Severity: k.Severity()}
	if len(offending) > 0 {
		row.Count = max(t.Rows(), 1)
		row.ErrorRate = 1
		for _, o := range offending {
			row.DistinctValues = append(row.DistinctValues, o)
		}
	}
	row.Pass = row.Count == 0
	return row
}

func validateColumnsComplete(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(ColumnsComplete)
	if !ok {
		return acc, invalidRule(KindColumnsComplete, "unexpected payload %T", r)
	}
	actual := t.ColumnNames()
	have := make(map[string]bool, len(actual))
	for _, c := range actual {
		have[c] = true
	}
	want := make(map[string]bool, len(rule.Expected))
	var offending []string
	for _, c := range rule.Expected {
		want[c] = true
		if !have[c] {
			offending = append(offending, c)
		}
	}
	for _, c := range actual {
		if !want[c] {
			offending = append(offending, c)
		}
	}
	return acc.add(datasetSummary(t, KindColumnsComplete, rule.Expected, offending), "", nil), nil
}

func validateColumnsOrder(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(ColumnsOrder)
	if !ok {
		return acc, invalidRule(KindColumnsOrder, "unexpected payload %T", r)
	}
	actual := t.ColumnNames()
	have := make(map[string]bool, len(actual))
	for _, c := range actual {
		have[c] = true
	}
	want := make(map[string]bool, len(rule.Expected))
	var expectedShared []string
	for _, c := range rule.Expected {
		want[c] = true
		if have[c] {
			expectedShared = append(expectedShared, c)
		}
	}
	var actualShared []string
	for _, c := range actual {
		if want[c] {
			actualShared = append(actualShared, c)
		}
	}
	var offending []string
	for i := range actualShared {
		if actualShared[i] != expectedShared[i] {
			offending = append(offending, actualShared[i])
		}
	}
	return acc.add(datasetSummary(t, KindColumnsOrder, rule.Expected, offending), "", nil), nil
}

func validateDuplicates(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(Duplicates)
	if !ok {
		return acc, invalidRule(KindDuplicates, "unexpected payload %T", r)
	}
	for _, group := range rule.Groups {
		if len(group) == 0 {
			continue
		}
		if len(targetColumns(t, group, KindDuplicates)) != len(group) {
			continue
		}
		keys := make([]string, t.Rows())
		counts := make(map[string]int, t.Rows())
		for i := range keys {
			parts := make([]string, len(group))
			for j, c := range group {
				v, present := t.Cell(i, c)
				parts[j] = valueKey(v, present)
			}
			keys[i] = strings.Join(parts, "\x1f")
			counts[keys[i]]++
		}
		mask := make([]bool, t.Rows())
		for i, k := range keys {
			mask[i] = counts[k] == 1
		}
		name := strings.Join(group, "+")
		sample := func(row int) any {
			if len(group) == 1 {
				return cellSample(t, group[0])(row)
			}
			parts := make([]string, len(group))
			for j, c := range group {
				parts[j] = formatValue(cellSample(t, c)(row))
			}
			return "(" + strings.Join(parts, ", ") + ")"
		}
		row := newSummary(name, KindDuplicates, "["+strings.Join(group, ", ")+"]", mask, sample)
		acc = acc.add(row, cellName(name, KindDuplicates), mask)
	}
	return acc, nil
}

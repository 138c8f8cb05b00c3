package validate

import (
	"slices"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// Rule is one configured validation. Each concrete type carries the payload
// for exactly one Kind.
type Rule interface {
	Kind() Kind
}

// ColumnsComplete expects the table's column set to equal Expected.
type ColumnsComplete struct{ Expected []string }

// ColumnsOrder expects the shared columns to appear in Expected's order.
type ColumnsOrder struct{ Expected []string }

// NonNullable rejects null cells in Columns.
type NonNullable struct{ Columns []string }

// AllowedValues restricts each column to a set of values. Nulls pass.
type AllowedValues struct{ Values map[string][]any }

// MinValue is an inclusive lower bound per column.
type MinValue struct{ Bounds map[string]float64 }

// MaxValue is an inclusive upper bound per column.
type MaxValue struct{ Bounds map[string]float64 }

// MinLen is an inclusive lower bound on string length per column.
type MinLen struct{ Bounds map[string]int }

// MaxLen is an inclusive upper bound on string length per column.
type MaxLen struct{ Bounds map[string]int }

// TypeCheck maps columns to an expected type name, see ParseValueType.
type TypeCheck struct{ Types map[string]string }

// Duplicates flags rows sharing values over each group of columns.
type Duplicates struct{ Groups [][]string }

// ISO2 expects country codes or resolvable country names.
type ISO2 struct{ Columns []string }

// Condition maps a result name to a boolean expression over the row.
type Condition struct{ Exprs map[string]string }

func (ColumnsComplete) Kind() Kind { return KindColumnsComplete }
func (ColumnsOrder) Kind() Kind    { return KindColumnsOrder }
func (NonNullable) Kind() Kind     { return KindNonNullable }
func (AllowedValues) Kind() Kind   { return KindAllowedValues }
func (MinValue) Kind() Kind        { return KindMinValue }
func (MaxValue) Kind() Kind        { return KindMaxValue }
func (MinLen) Kind() Kind          { return KindMinLen }
func (MaxLen) Kind() Kind          { return KindMaxLen }
func (TypeCheck) Kind() Kind       { return KindType }
func (Duplicates) Kind() Kind      { return KindDuplicates }
func (ISO2) Kind() Kind            { return KindISO2 }
func (Condition) Kind() Kind       { return KindCondition }

// RuleSet holds at most one rule per kind.
type RuleSet map[Kind]Rule

// Add stores r under its kind, replacing any previous rule.
func (rs RuleSet) Add(r Rule) RuleSet {
	rs[r.Kind()] = r
	return rs
}

// targetColumns returns the requested columns present in t, in table
// order. Absent columns are skipped.
func targetColumns(t frame.Table, want []string, k Kind) []string {
	wanted := make(map[string]bool, len(want))
	for _, w := range want {
		wanted[w] = true
	}
	var out []string
	for _, name := range t.ColumnNames() {
		if wanted[name] {
			out = append(out, name)
			delete(wanted, name)
		}
	}
	if len(wanted) > 0 {
		skipped := make([]string, 0, len(wanted))
		for w := range wanted {
			skipped = append(skipped, w)
		}
		sort.Strings(skipped)
		log.WithFields(log.Fields{"rule": k.String(), "columns": skipped}).Debug("skipping columns absent from input")
	}
	return out
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func cellName(column string, k Kind) string { return column + "_" + k.String() }

// cellSample reports the cell itself as the offending value.
func cellSample(t frame.Table, column string) func(int) any {
	return func(row int) any {
		v, ok := t.Cell(row, column)
		if !ok {
			return nil
		}
		return v
	}
}

// checkCells evaluates ok for every row of column and records the result.
func checkCells(t frame.Table, acc Accumulator, column string, k Kind, rule string, ok func(v any, present bool) bool) Accumulator {
	mask := make([]bool, t.Rows())
	for i := range mask {
		v, present := t.Cell(i, column)
		mask[i] = ok(v, present)
	}
	row := newSummary(column, k, rule, mask, cellSample(t, column))
	return acc.add(row, cellName(column, k), mask)
}

package validate

import (
	"maps"
	"slices"
	"time"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// AllColumns is the column name used by dataset-level rules.
const AllColumns = "all_columns"

// maxDistinct caps the offending-value sample kept per summary row.
const maxDistinct = 20

// SummaryRow is the outcome of one rule on one column.
type SummaryRow struct {
	Column         string
	Type           Kind
	Rule           string
	Pass           bool
	Count          int
	ErrorRate      float64
	DistinctValues []any
	Severity       Severity
	Timestamp      time.Time
}

type summaryKey struct {
	column string
	kind   Kind
	rule   string
}

func (s SummaryRow) key() summaryKey { return summaryKey{s.Column, s.Type, s.Rule} }

// newSummary builds a summary row from a compliance mask. sample returns
// the offending value reported for a failing row.
func newSummary(column string, k Kind, rule string, mask []bool, sample func(row int) any) SummaryRow {
	row := SummaryRow{Column: column, Type: k, Rule: rule, Severity: k.Severity()}
	seen := make(map[string]struct{})
	for i, ok := range mask {
		if ok {
			continue
		}
		row.Count++
		if len(row.DistinctValues) >= maxDistinct {
			continue
		}
		v := sample(i)
		key := valueKey(v, v != nil)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		row.DistinctValues = append(row.DistinctValues, v)
	}
	row.Pass = row.Count == 0
	row.ErrorRate = float64(row.Count) / float64(max(len(mask), 1))
	return row
}

// CellTable holds one boolean column per applied (column, rule) pair,
// aligned with the input rows and keyed by the hash columns.
type CellTable struct {
	rows   int
	hash   []string
	kinds  map[string]frame.Kind
	values map[string][]any
	names  []string
	masks  map[string][]bool
}

func newCellTable(t frame.Table, hash []string) CellTable {
	c := CellTable{
		rows:   t.Rows(),
		hash:   slices.Clone(hash),
		kinds:  make(map[string]frame.Kind, len(hash)),
		values: make(map[string][]any, len(hash)),
		masks:  make(map[string][]bool),
	}
	for _, h := range hash {
		k, _ := t.ColumnKind(h)
		c.kinds[h] = k
		vals := make([]any, t.Rows())
		for i := range vals {
			if v, ok := t.Cell(i, h); ok {
				vals[i] = v
			}
		}
		c.values[h] = vals
	}
	return c
}

func (c CellTable) Rows() int { return c.rows }

// HashColumns returns the row-identity columns.
func (c CellTable) HashColumns() []string { return slices.Clone(c.hash) }

// Columns returns the result column names in the order they were applied.
func (c CellTable) Columns() []string { return slices.Clone(c.names) }

// Mask returns a copy of the named result column.
func (c CellTable) Mask(name string) ([]bool, bool) {
	m, ok := c.masks[name]
	return slices.Clone(m), ok
}

// Key returns the hash-column values of a row; nulls are nil.
func (c CellTable) Key(row int) []any {
	key := make([]any, len(c.hash))
	for i, h := range c.hash {
		key[i] = c.values[h][row]
	}
	return key
}

// Failures lists the result columns that are false for row.
func (c CellTable) Failures(row int) []string {
	var out []string
	for _, n := range c.names {
		if !c.masks[n][row] {
			out = append(out, n)
		}
	}
	return out
}

// Passed reports whether every result column is true for row.
func (c CellTable) Passed(row int) bool {
	for _, n := range c.names {
		if !c.masks[n][row] {
			return false
		}
	}
	return true
}

// With returns a copy of c with mask stored under name. Applying the same
// name twice keeps a cell true only if it passed both times.
func (c CellTable) With(name string, mask []bool) CellTable {
	out := c
	out.masks = maps.Clone(c.masks)
	if out.masks == nil {
		out.masks = make(map[string][]bool)
	}
	if prev, ok := c.masks[name]; ok {
		merged := make([]bool, len(prev))
		for i := range prev {
			merged[i] = prev[i] && mask[i]
		}
		out.masks[name] = merged
		return out
	}
	out.names = append(slices.Clone(c.names), name)
	out.masks[name] = slices.Clone(mask)
	return out
}

// Accumulator threads the summary rows and cell results through the
// validators. Validators return a new value and leave their input intact.
type Accumulator struct {
	Summary []SummaryRow
	Cells   CellTable
}

// NewAccumulator starts an empty accumulator keyed by the hash columns.
func NewAccumulator(t frame.Table, hash []string) (Accumulator, error) {
	if missing := missingColumns(t, hash); len(missing) > 0 {
		return Accumulator{}, &MissingColumnError{Columns: missing, Available: t.ColumnNames()}
	}
	return Accumulator{Cells: newCellTable(t, hash)}, nil
}

func (a Accumulator) add(row SummaryRow, cellName string, mask []bool) Accumulator {
	out := Accumulator{Summary: append(slices.Clone(a.Summary), row), Cells: a.Cells}
	if cellName != "" {
		out.Cells = a.Cells.With(cellName, mask)
	}
	return out
}

func missingColumns(t frame.Table, cols []string) []string {
	var missing []string
	for _, c := range cols {
		if !frame.HasColumn(t, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

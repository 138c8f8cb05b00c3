package frame

import "fmt"

// Table is the read-only capability the validators need from a dataset
// backend. *Frame implements it; adapters wrap other engines.
type Table interface {
	Rows() int
	ColumnNames() []string
	ColumnKind(name string) (Kind, bool)
	Cell(row int, name string) (any, bool)
}

var _ Table = (*Frame)(nil)

// HasColumn reports whether t has a column called name.
func HasColumn(t Table, name string) bool {
	_, ok := t.ColumnKind(name)
	return ok
}

// Take materialises the given rows of t, in order, as a new Frame.
func Take(t Table, rows []int) (*Frame, error) {
	names := t.ColumnNames()
	s := Schema{Columns: make([]ColumnSchema, len(names))}
	for i, n := range names {
		k, _ := t.ColumnKind(n)
		s.Columns[i] = ColumnSchema{Name: n, Type: k, Nullable: true}
	}
	f := NewFrame(s)
	for _, r := range rows {
		if r < 0 || r >= t.Rows() {
			return nil, fmt.Errorf("row %d out of range [0,%d)", r, t.Rows())
		}
		f.AppendNullRow()
		out := f.Rows() - 1
		for _, n := range names {
			v, ok := t.Cell(r, n)
			if !ok {
				continue
			}
			if err := f.SetCell(out, n, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// Materialize copies every row of t into a Frame. A *Frame is returned as is.
func Materialize(t Table) (*Frame, error) {
	if f, ok := t.(*Frame); ok {
		return f, nil
	}
	rows := make([]int, t.Rows())
	for i := range rows {
		rows[i] = i
	}
	return Take(t, rows)
}

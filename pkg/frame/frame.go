package frame

import (
	"fmt"
	"math"
	"time"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	// Value returns the cell as bool, int64, float64, string or time.Time.
	Value(i int) (any, bool)
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{name: name, data: make([]bool, n), nulls: make([]bool, n)}
}
func (c *BoolColumn) Name() string            { return c.name }
func (c *BoolColumn) Kind() Kind              { return KindBool }
func (c *BoolColumn) Len() int                { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *BoolColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *BoolColumn) Get(i int) (bool, bool)  { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Value(i int) (any, bool) { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Set(i int, v bool)       { c.data[i] = v; c.nulls[i] = false }
func (c *BoolColumn) AppendNull()             { c.data = append(c.data, false); c.nulls = append(c.nulls, true) }
func (c *BoolColumn) Append(v bool)           { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: make([]bool, n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Value(i int) (any, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }

// FloatColumn treats NaN as null on read.
type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: make([]bool, n)}
}
func (c *FloatColumn) Name() string      { return c.name }
func (c *FloatColumn) Kind() Kind        { return KindFloat }
func (c *FloatColumn) Len() int          { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool { return c.nulls[i] || math.IsNaN(c.data[i]) }
func (c *FloatColumn) SetNull(i int)     { c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) {
	return c.data[i], !c.IsNull(i)
}
func (c *FloatColumn) Value(i int) (any, bool) { return c.data[i], !c.IsNull(i) }
func (c *FloatColumn) Set(i int, v float64)    { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Append(v float64)        { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: make([]bool, n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Value(i int) (any, bool)  { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }

type TimeColumn struct {
	name  string
	data  []time.Time
	nulls []bool
}

func NewTimeColumn(name string, n int) *TimeColumn {
	return &TimeColumn{name: name, data: make([]time.Time, n), nulls: make([]bool, n)}
}
func (c *TimeColumn) Name() string                { return c.name }
func (c *TimeColumn) Kind() Kind                  { return KindTime }
func (c *TimeColumn) Len() int                    { return len(c.data) }
func (c *TimeColumn) IsNull(i int) bool           { return c.nulls[i] }
func (c *TimeColumn) SetNull(i int)               { c.nulls[i] = true }
func (c *TimeColumn) Get(i int) (time.Time, bool) { return c.data[i], !c.nulls[i] }
func (c *TimeColumn) Value(i int) (any, bool)     { return c.data[i], !c.nulls[i] }
func (c *TimeColumn) Set(i int, v time.Time)      { c.data[i] = v; c.nulls[i] = false }
func (c *TimeColumn) AppendNull() {
	c.data = append(c.data, time.Time{})
	c.nulls = append(c.nulls, true)
}
func (c *TimeColumn) Append(v time.Time) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

// NewColumn allocates an all-null column of the given kind.
func NewColumn(name string, k Kind, n int) (Column, error) {
	var c Column
	switch k {
	case KindBool:
		c = NewBoolColumn(name, n)
	case KindInt:
		c = NewIntColumn(name, n)
	case KindFloat:
		c = NewFloatColumn(name, n)
	case KindString:
		c = NewStringColumn(name, n)
	case KindTime:
		c = NewTimeColumn(name, n)
	default:
		return nil, fmt.Errorf("column %s: invalid kind %v", name, k)
	}
	for i := 0; i < n; i++ {
		c.SetNull(i)
	}
	return c, nil
}

// Frame is a columnar container for tabular data.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		c, err := NewColumn(cs.Name, cs.Type, 0)
		if err != nil {
			panic(err)
		}
		f.cols[i] = c
		f.index[cs.Name] = i
	}
	return f
}

// FromRows builds a frame from row-major values; nil cells are null.
func FromRows(s Schema, rows [][]any) (*Frame, error) {
	f := NewFrame(s)
	for r, vals := range rows {
		if len(vals) != len(s.Columns) {
			return nil, fmt.Errorf("row %d: need %d values, got %d", r, len(s.Columns), len(vals))
		}
		f.AppendNullRow()
		for c, cs := range s.Columns {
			if err := f.SetCell(r, cs.Name, vals[c]); err != nil {
				return nil, fmt.Errorf("row %d: %w", r, err)
			}
		}
	}
	return f, nil
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// ColumnNames returns the column names in schema order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.schema.Columns))
	for i, cs := range f.schema.Columns {
		names[i] = cs.Name
	}
	return names
}

func (f *Frame) ColumnKind(name string) (Kind, bool) {
	i, ok := f.index[name]
	if !ok {
		return KindInvalid, false
	}
	return f.cols[i].Kind(), true
}

// Cell returns the value at (row, name) and whether it is non-null.
// Unknown columns read as null.
func (f *Frame) Cell(row int, name string) (any, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i].Value(row)
}

// WithColumn returns a new frame sharing f's columns with col added, or
// replacing the column of the same name in place.
func (f *Frame) WithColumn(col Column) (*Frame, error) {
	if col.Len() != f.nrows {
		return nil, fmt.Errorf("column %s has %d rows, frame has %d", col.Name(), col.Len(), f.nrows)
	}
	out := &Frame{nrows: f.nrows, index: make(map[string]int, len(f.cols)+1)}
	out.schema.Columns = append(out.schema.Columns, f.schema.Columns...)
	out.cols = append(out.cols, f.cols...)
	cs := ColumnSchema{Name: col.Name(), Type: col.Kind(), Nullable: true}
	if i, ok := f.index[col.Name()]; ok {
		out.schema.Columns[i] = cs
		out.cols[i] = col
	} else {
		out.schema.Columns = append(out.schema.Columns, cs)
		out.cols = append(out.cols, col)
	}
	for i, c := range out.cols {
		out.index[c.Name()] = i
	}
	return out, nil
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		switch col := c.(type) {
		case *BoolColumn:
			col.AppendNull()
		case *IntColumn:
			col.AppendNull()
		case *FloatColumn:
			col.AppendNull()
		case *StringColumn:
			col.AppendNull()
		case *TimeColumn:
			col.AppendNull()
		default:
			panic("unknown column type")
		}
	}
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	c := f.cols[i]
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int32:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}

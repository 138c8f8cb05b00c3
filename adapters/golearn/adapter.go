// Package golearn lets golearn instance grids be validated directly and
// converts tables into golearn DenseInstances.
package golearn

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// nullCategory is registered first on every categorical attribute so that
// cells never set read back as null.
const nullCategory = ""

// Instances exposes a golearn grid as a frame.Table. Float attributes read
// as float columns with NaN as null; categorical attributes read as string
// columns.
type Instances struct {
	grid  base.FixedDataGrid
	rows  int
	names []string
	specs map[string]base.AttributeSpec
	kinds map[string]frame.Kind
}

var _ frame.Table = (*Instances)(nil)

func NewInstances(g base.FixedDataGrid) (*Instances, error) {
	attrs := g.AllAttributes()
	in := &Instances{
		grid:  g,
		names: make([]string, len(attrs)),
		specs: make(map[string]base.AttributeSpec, len(attrs)),
		kinds: make(map[string]frame.Kind, len(attrs)),
	}
	_, in.rows = g.Size()
	for i, a := range attrs {
		spec, err := g.GetAttribute(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.GetName(), err)
		}
		name := a.GetName()
		if _, dup := in.specs[name]; dup {
			return nil, fmt.Errorf("duplicate attribute %s", name)
		}
		in.names[i] = name
		in.specs[name] = spec
		switch a.(type) {
		case *base.FloatAttribute:
			in.kinds[name] = frame.KindFloat
		default:
			in.kinds[name] = frame.KindString
		}
	}
	return in, nil
}

func (in *Instances) Rows() int { return in.rows }

func (in *Instances) ColumnNames() []string {
	return append([]string(nil), in.names...)
}

func (in *Instances) ColumnKind(name string) (frame.Kind, bool) {
	k, ok := in.kinds[name]
	return k, ok
}

func (in *Instances) Cell(row int, name string) (any, bool) {
	spec, ok := in.specs[name]
	if !ok {
		return nil, false
	}
	raw := in.grid.Get(spec, row)
	if in.kinds[name] == frame.KindFloat {
		v := base.UnpackBytesToFloat(raw)
		if math.IsNaN(v) {
			return nil, false
		}
		return v, true
	}
	s := spec.GetAttribute().GetStringFromSysVal(raw)
	if s == nullCategory {
		return nil, false
	}
	return s, true
}

// ToDenseInstances copies t into DenseInstances. Numeric columns become
// float attributes (null as NaN); every other column becomes categorical.
// A non-empty class names the class attribute.
func ToDenseInstances(t frame.Table, class string) (*base.DenseInstances, error) {
	names := t.ColumnNames()
	attrs := make([]base.Attribute, len(names))
	numeric := make([]bool, len(names))
	classIdx := -1
	for i, name := range names {
		k, _ := t.ColumnKind(name)
		if k == frame.KindFloat || k == frame.KindInt {
			attrs[i] = base.NewFloatAttribute(name)
			numeric[i] = true
		} else {
			ca := new(base.CategoricalAttribute)
			ca.SetName(name)
			ca.GetSysValFromString(nullCategory)
			attrs[i] = ca
		}
		if name == class {
			classIdx = i
		}
	}
	if class != "" && classIdx < 0 {
		return nil, fmt.Errorf("class column %s not found", class)
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if classIdx >= 0 {
		if err := inst.AddClassAttribute(attrs[classIdx]); err != nil {
			return nil, err
		}
	}
	if err := inst.Extend(t.Rows()); err != nil {
		return nil, err
	}

	nan := base.PackFloatToBytes(math.NaN())
	for r := 0; r < t.Rows(); r++ {
		for c, name := range names {
			v, ok := t.Cell(r, name)
			if numeric[c] {
				packed := nan
				if f, isNum := frame.Coerce(frame.KindFloat, v); ok && isNum {
					packed = base.PackFloatToBytes(f.(float64))
				}
				inst.Set(specs[c], r, packed)
				continue
			}
			if ok {
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(frame.FormatCell(v)))
			}
		}
	}
	return inst, nil
}

// FromDenseInstances materialises a golearn grid as a Frame.
func FromDenseInstances(g base.FixedDataGrid) (*frame.Frame, error) {
	in, err := NewInstances(g)
	if err != nil {
		return nil, err
	}
	return frame.Materialize(in)
}

// Package profile collects per-column statistics from tables and turns them
// into a starting ontology view.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/wdm0006/frameguard/pkg/frame"
	"github.com/wdm0006/frameguard/pkg/ontology"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

// Mean is 0 for an all-null column.
func (s *NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

// StringStats also covers time columns, keyed by their RFC 3339 text.
type StringStats struct {
	Count  int            `json:"count"`
	Nulls  int            `json:"nulls"`
	MinLen int            `json:"min_len"`
	MaxLen int            `json:"max_len"`
	Freqs  map[string]int `json:"-"`
}

type ColumnProfile struct {
	Name string       `json:"name"`
	Type string       `json:"type"`
	Kind frame.Kind   `json:"-"`
	Num  *NumStats    `json:"num,omitempty"`
	Bool *BoolStats   `json:"bool,omitempty"`
	Str  *StringStats `json:"str,omitempty"`
}

func (c *ColumnProfile) counts() (count, nulls int) {
	switch {
	case c.Num != nil:
		return c.Num.Count, c.Num.Nulls
	case c.Bool != nil:
		return c.Bool.Count, c.Bool.Nulls
	case c.Str != nil:
		return c.Str.Count, c.Str.Nulls
	}
	return 0, 0
}

// Collector accumulates column statistics over one or more tables with the
// same columns.
type Collector struct {
	rows  int
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

// NewCollector prepares a collector for t's columns. topK bounds the
// frequent values listed by ReportText; 0 lists none.
func NewCollector(t frame.Table, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	for _, name := range t.ColumnNames() {
		k, _ := t.ColumnKind(name)
		cp := ColumnProfile{Name: name, Type: k.String(), Kind: k}
		switch k {
		case frame.KindFloat, frame.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case frame.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.index[name] = len(c.cols)
		c.cols = append(c.cols, cp)
	}
	return c
}

// Consume adds t's rows. Columns t lacks count as null.
func (c *Collector) Consume(t frame.Table) {
	for ci := range c.cols {
		cp := &c.cols[ci]
		for i := 0; i < t.Rows(); i++ {
			v, ok := t.Cell(i, cp.Name)
			switch {
			case cp.Num != nil:
				x, isNum := asFloat(v)
				if !ok || !isNum {
					cp.Num.Nulls++
					continue
				}
				cp.Num.Count++
				cp.Num.Min = math.Min(cp.Num.Min, x)
				cp.Num.Max = math.Max(cp.Num.Max, x)
				cp.Num.Sum += x
			case cp.Bool != nil:
				b, isBool := v.(bool)
				if !ok || !isBool {
					cp.Bool.Nulls++
					continue
				}
				cp.Bool.Count++
				if b {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			default:
				if !ok {
					cp.Str.Nulls++
					continue
				}
				s := frame.FormatCell(v)
				n := utf8.RuneCountInString(s)
				if cp.Str.Count == 0 || n < cp.Str.MinLen {
					cp.Str.MinLen = n
				}
				if n > cp.Str.MaxLen {
					cp.Str.MaxLen = n
				}
				cp.Str.Count++
				cp.Str.Freqs[s]++
			}
		}
	}
	c.rows += t.Rows()
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case int64:
		return float64(x), true
	}
	return 0, false
}

// Rows is the number of rows consumed.
func (c *Collector) Rows() int { return c.rows }

// Columns returns the collected profiles in column order.
func (c *Collector) Columns() []ColumnProfile { return c.cols }

// Column looks a profile up by name.
func (c *Collector) Column(name string) (ColumnProfile, bool) {
	i, ok := c.index[name]
	if !ok {
		return ColumnProfile{}, false
	}
	return c.cols[i], true
}

type freq struct {
	value string
	n     int
}

// top returns the most frequent values, ties broken by value.
func top(freqs map[string]int, k int) []freq {
	out := make([]freq, 0, len(freqs))
	for v, n := range freqs {
		out = append(out, freq{v, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].value < out[j].value
	})
	if k >= 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile Summary (%d rows)\n", c.rows)
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			n := cp.Num
			if n.Count == 0 {
				fmt.Fprintf(&b, "count=0 nulls=%d\n", n.Nulls)
				continue
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", n.Count, n.Nulls, n.Min, n.Max, n.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			s := cp.Str
			fmt.Fprintf(&b, "count=%d nulls=%d distinct=%d len=%d..%d\n", s.Count, s.Nulls, len(s.Freqs), s.MinLen, s.MaxLen)
			if c.topK > 0 {
				for _, f := range top(s.Freqs, c.topK) {
					fmt.Fprintf(&b, "    %q: %d\n", f.value, f.n)
				}
			}
		}
	}
	return b.String()
}

// SuggestView drafts a view that the profiled data satisfies: observed
// types, non-nullable where no nulls were seen, observed numeric ranges and
// string lengths, and allowed values for string columns with at most
// maxAllowed distinct values (0 disables).
func (c *Collector) SuggestView(name string, maxAllowed int) *ontology.View {
	v := &ontology.View{Name: name}
	for _, cp := range c.cols {
		f := ontology.Field{Name: cp.Name}
		if cp.Kind != frame.KindInvalid {
			f.Type = cp.Kind.String()
		}
		count, nulls := cp.counts()
		nullable := nulls > 0 || count == 0
		f.Nullable = &nullable
		switch {
		case cp.Num != nil && cp.Num.Count > 0:
			lo, hi := cp.Num.Min, cp.Num.Max
			f.MinValue, f.MaxValue = &lo, &hi
		case cp.Str != nil && cp.Str.Count > 0 && cp.Kind == frame.KindString:
			lo, hi := cp.Str.MinLen, cp.Str.MaxLen
			f.MinLen, f.MaxLen = &lo, &hi
			if maxAllowed > 0 && len(cp.Str.Freqs) <= maxAllowed {
				for _, fr := range top(cp.Str.Freqs, -1) {
					f.AllowedValues = append(f.AllowedValues, fr.value)
				}
			}
		}
		v.Fields = append(v.Fields, f)
	}
	return v
}

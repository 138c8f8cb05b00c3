// Package binning buckets a numeric column into labeled bins.
package binning

import (
	"context"
	"fmt"
	"math"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// ColumnBinner labels From into To using split points Bins (n+1, strictly
// ascending) and Labels (n). A value v gets Labels[i] when
// Bins[i] <= v < Bins[i+1]; the last bin also includes Bins[n]. Nulls and
// values outside [Bins[0], Bins[n]] become null.
type ColumnBinner struct {
	From   string
	To     string
	Bins   []float64
	Labels []string
}

func (t *ColumnBinner) Name() string { return "bin_column" }

// Check reports configuration errors without touching any data.
func (t *ColumnBinner) Check() error {
	if t.From == "" || t.To == "" {
		return fmt.Errorf("bin_column: from and to columns are required")
	}
	if len(t.Bins) < 2 {
		return fmt.Errorf("bin_column: need at least 2 split points, got %d", len(t.Bins))
	}
	if len(t.Labels) != len(t.Bins)-1 {
		return fmt.Errorf("bin_column: %d split points need %d labels, got %d", len(t.Bins), len(t.Bins)-1, len(t.Labels))
	}
	for i := 1; i < len(t.Bins); i++ {
		if !(t.Bins[i] > t.Bins[i-1]) {
			return fmt.Errorf("bin_column: split points must be strictly ascending at %d", i)
		}
	}
	return nil
}

// Label returns the label for v, or false when v is NaN or falls outside
// the bins.
func (t *ColumnBinner) Label(v float64) (string, bool) {
	n := len(t.Labels)
	if n == 0 || math.IsNaN(v) || v < t.Bins[0] || v > t.Bins[n] {
		return "", false
	}
	if v == t.Bins[n] {
		return t.Labels[n-1], true
	}
	// binary search for the last split point <= v
	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.Bins[mid] <= v {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return t.Labels[lo], true
}

func (t *ColumnBinner) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := t.Check(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(t.From)
	if !ok {
		return nil, fmt.Errorf("bin_column: unknown column %s", t.From)
	}
	out := frame.NewStringColumn(t.To, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		var v float64
		switch c := col.(type) {
		case *frame.FloatColumn:
			x, ok := c.Get(i)
			if !ok {
				out.SetNull(i)
				continue
			}
			v = x
		case *frame.IntColumn:
			x, ok := c.Get(i)
			if !ok {
				out.SetNull(i)
				continue
			}
			v = float64(x)
		default:
			return nil, fmt.Errorf("bin_column: column %s is %v, want numeric", t.From, col.Kind())
		}
		if label, ok := t.Label(v); ok {
			out.Set(i, label)
		} else {
			out.SetNull(i)
		}
	}
	return f.WithColumn(out)
}

package binning

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/frameguard/pkg/frame"
)

func makeFrame(t *testing.T, vals ...any) *frame.Frame {
	t.Helper()
	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "x", Type: frame.KindFloat, Nullable: true}}}
	rows := make([][]any, len(vals))
	for i, v := range vals {
		rows[i] = []any{v}
	}
	f, err := frame.FromRows(s, rows)
	require.NoError(t, err)
	return f
}

func TestColumnBinner(t *testing.T) {
	f := makeFrame(t, 5.0, 15.0, nil, 25.0, 0.0, 10.0, 20.0, -1.0)
	b := &ColumnBinner{From: "x", To: "bucket", Bins: []float64{0, 10, 20}, Labels: []string{"low", "high"}}
	out, err := b.Apply(context.Background(), f)
	require.NoError(t, err)

	want := []any{"low", "high", nil, nil, "low", "high", "high", nil}
	for i, w := range want {
		v, ok := out.Cell(i, "bucket")
		if w == nil {
			assert.False(t, ok, "row %d should be null, got %v", i, v)
			continue
		}
		assert.True(t, ok, "row %d should be labeled", i)
		assert.Equal(t, w, v, "row %d", i)
	}
	_, present := f.ColumnByName("bucket")
	assert.False(t, present, "input frame must be left untouched")
}

func TestLabelNaNIsNull(t *testing.T) {
	b := &ColumnBinner{From: "x", To: "bucket", Bins: []float64{0, 10, 20}, Labels: []string{"low", "high"}}
	_, ok := b.Label(math.NaN())
	assert.False(t, ok)
	l, ok := b.Label(20)
	assert.True(t, ok)
	assert.Equal(t, "high", l)

	out, err := b.Apply(context.Background(), makeFrame(t, math.NaN(), 3.0))
	require.NoError(t, err)
	_, ok = out.Cell(0, "bucket")
	assert.False(t, ok)
}

func TestColumnBinnerIntColumnAndRepeat(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "n", Type: frame.KindInt, Nullable: true}}}
	f, err := frame.FromRows(s, [][]any{{1}, {12}})
	require.NoError(t, err)
	b := &ColumnBinner{From: "n", To: "n_bin", Bins: []float64{0, 10, 20}, Labels: []string{"low", "high"}}
	first, err := b.Apply(context.Background(), f)
	require.NoError(t, err)
	second, err := b.Apply(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, first.ColumnNames(), second.ColumnNames())
	v, _ := second.Cell(1, "n_bin")
	assert.Equal(t, "high", v)
}

func TestColumnBinnerRejectsBadConfig(t *testing.T) {
	f := makeFrame(t, 1.0)
	cases := map[string]*ColumnBinner{
		"label count": {From: "x", To: "y", Bins: []float64{0, 1}, Labels: []string{"a", "b"}},
		"descending":  {From: "x", To: "y", Bins: []float64{2, 1}, Labels: []string{"a"}},
		"unknown col": {From: "nope", To: "y", Bins: []float64{0, 1}, Labels: []string{"a"}},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := b.Apply(context.Background(), f)
			require.Error(t, err)
		})
	}

	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "s", Type: frame.KindString}}}
	sf, err := frame.FromRows(s, [][]any{{"a"}})
	require.NoError(t, err)
	_, err = (&ColumnBinner{From: "s", To: "y", Bins: []float64{0, 1}, Labels: []string{"a"}}).Apply(context.Background(), sf)
	require.Error(t, err)
}

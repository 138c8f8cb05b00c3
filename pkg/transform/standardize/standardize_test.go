package standardize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/frameguard/pkg/frame"
)

func strings3(t *testing.T) *frame.Frame {
	t.Helper()
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "s", Type: frame.KindString, Nullable: true},
		{Name: "n", Type: frame.KindInt, Nullable: true},
	}}
	f, err := frame.FromRows(s, [][]any{{"  Foo  ", 1}, {"BAR", 2}, {nil, 3}})
	require.NoError(t, err)
	return f
}

func values(f *frame.Frame, col string) []any {
	out := make([]any, f.Rows())
	for i := range out {
		if v, ok := f.Cell(i, col); ok {
			out[i] = v
		}
	}
	return out
}

func TestStepsChain(t *testing.T) {
	in := strings3(t)
	p := frame.NewPipeline().
		Add(&Trim{Column: "s"}).
		Add(&Lower{Column: "s"}).
		Add(&RegexReplace{Column: "s", Pattern: "o+", Replace: "O"}).
		Add(&MapValues{Column: "s", Map: map[string]string{"bar": "baz"}})
	out, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []any{"fO", "baz", nil}, values(out, "s"))
	// the input frame is untouched
	assert.Equal(t, []any{"  Foo  ", "BAR", nil}, values(in, "s"))
}

func TestMissingAndNonStringColumnsAreSkipped(t *testing.T) {
	in := strings3(t)
	for _, step := range []frame.Transform{&Trim{Column: "nope"}, &Lower{Column: "n"}} {
		out, err := step.Apply(context.Background(), in)
		require.NoError(t, err)
		assert.Same(t, in, out)
	}
}

func TestNew(t *testing.T) {
	step, err := New("map_values", "s", Params{Map: map[string]string{"a": "b"}})
	require.NoError(t, err)
	assert.Equal(t, "map_values", step.Name())

	_, err = New("regex_replace", "s", Params{Pattern: "("})
	require.Error(t, err)
	_, err = New("titlecase", "s", Params{})
	require.Error(t, err)
}

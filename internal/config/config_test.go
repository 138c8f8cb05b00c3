package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/frameguard/internal/config"
	"github.com/wdm0006/frameguard/pkg/frame"
	"github.com/wdm0006/frameguard/pkg/validate"
)

const runYAML = `
input:
  path: data/customers.csv
  delimiter: ";"
output:
  dir: out
  type: jsonl
validation:
  error_tolerance: 0.1
  view: views/customer.yaml
  hash_columns: [customer_id]
  disable: [columns_order]
  rules:
    non_nullable: [region]
    min_value:
      score: 0
    condition: "score >= 0"
normalize:
  - op: trim
    column: region
  - op: map_values
    column: region
    map: {N: north, S: south}
bins:
  - from: score
    to: score_band
    bins: [0, 5, 10]
    labels: [low, high]
history:
  path: runs.db
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	c, err := config.Load(write(t, dir, "run.yaml", runYAML))
	require.NoError(t, err)

	assert.Equal(t, "csv", c.InputType())
	assert.Equal(t, "jsonl", c.OutputType())
	assert.True(t, c.HasHeader())
	assert.Equal(t, ';', c.Delimiter())
	assert.Equal(t, dir, c.Validation.BasePath)

	rs, err := c.RuleSet()
	require.NoError(t, err)
	assert.Len(t, rs, 3)
	assert.Equal(t, validate.NonNullable{Columns: []string{"region"}}, rs[validate.KindNonNullable])

	opts, err := c.Options(nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, opts.ErrorTolerance, 1e-12)
	assert.Equal(t, []validate.Kind{validate.KindColumnsOrder}, opts.Disabled)
	assert.Equal(t, []string{"customer_id"}, opts.HashColumns)

	require.Len(t, c.Binners(), 1)
	assert.Equal(t, "score_band", c.Binners()[0].To)
	assert.Equal(t, 3, c.Pipeline().Len())
}

func TestLoadTOMLDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := config.Load(write(t, dir, "run.toml", `
[input]
type = "parquet"
path = "in.parquet"
has_header = false

[validation]
base_path = "/srv/views"
`))
	require.NoError(t, err)
	assert.Equal(t, "parquet", c.InputType())
	assert.Equal(t, "csv", c.OutputType())
	assert.False(t, c.HasHeader())
	assert.Equal(t, rune(0), c.Delimiter())
	assert.Equal(t, "/srv/views", c.Validation.BasePath)

	opts, err := c.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, validate.DefaultErrorTolerance, opts.ErrorTolerance)
	assert.Empty(t, opts.Rules)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FRAMEGUARD_INPUT_PATH", "/data/override.csv")
	t.Setenv("FRAMEGUARD_OUTPUT_DIR", "/tmp/results")
	t.Setenv("FRAMEGUARD_HISTORY_PATH", "/tmp/h.db")
	c, err := config.Load(write(t, dir, "run.json", `{"input":{"path":"in.csv"}}`))
	require.NoError(t, err)
	assert.Equal(t, "/data/override.csv", c.Input.Path)
	assert.Equal(t, "/tmp/results", c.Output.Dir)
	assert.Equal(t, "/tmp/h.db", c.History.Path)
}

func TestCheckErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"input_type":  "input: {path: a, type: xlsx}",
		"output_type": "input: {path: a}\noutput: {type: avro}",
		"no_path":     "input: {type: csv}",
		"postgres":    "input: {type: postgres, dsn: 'postgres://x'}",
		"delimiter":   "input: {path: a, delimiter: '::'}",
		"tolerance":   "input: {path: a}\nvalidation: {error_tolerance: -0.5}",
		"disable":     "input: {path: a}\nvalidation: {disable: [bogus]}",
		"rules":       "input: {path: a}\nvalidation: {rules: {unique_email: [a]}}",
		"bins":        "input: {path: a}\nbins: [{from: x, to: y, bins: [3, 1], labels: [a]}]",
		"normalize":   "input: {path: a}\nnormalize: [{op: titlecase, column: x}]",
		"norm_column": "input: {path: a}\nnormalize: [{op: trim}]",
	}
	for name, body := range cases {
		_, err := config.Load(write(t, dir, name+".yaml", body))
		require.ErrorIs(t, err, config.ErrInvalidConfig, name)
	}

	_, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestPipelineBinsFrame(t *testing.T) {
	dir := t.TempDir()
	c, err := config.Load(write(t, dir, "run.yaml", runYAML))
	require.NoError(t, err)

	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "score", Type: frame.KindFloat, Nullable: true},
		{Name: "region", Type: frame.KindString, Nullable: true},
	}}
	f, err := frame.FromRows(s, [][]any{{1.0, " N"}, {7.5, "east"}, {12.0, nil}})
	require.NoError(t, err)
	out, err := c.Pipeline().Run(context.Background(), f)
	require.NoError(t, err)
	v, ok := out.Cell(1, "score_band")
	require.True(t, ok)
	assert.Equal(t, "high", v)
	_, ok = out.Cell(2, "score_band")
	assert.False(t, ok)
	v, _ = out.Cell(0, "region")
	assert.Equal(t, "north", v)
	v, _ = out.Cell(1, "region")
	assert.Equal(t, "east", v)
}

func TestToleranceAboveOneDisablesSoftFailures(t *testing.T) {
	dir := t.TempDir()
	c, err := config.Load(write(t, dir, "run.yaml", `
input: {path: in.csv}
validation:
  error_tolerance: 2
  rules:
    min_value: {score: 100}
`))
	require.NoError(t, err)
	opts, err := c.Options(nil)
	require.NoError(t, err)

	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "score", Type: frame.KindFloat, Nullable: true}}}
	f, err := frame.FromRows(s, [][]any{{1.0}, {2.0}})
	require.NoError(t, err)
	rep, err := validate.Run(f, opts)
	require.NoError(t, err)
	assert.True(t, rep.Pass)
	assert.True(t, rep.SoftPass)
	assert.False(t, rep.Flawless)
}

package ontology_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/frameguard/pkg/frame"
	"github.com/wdm0006/frameguard/pkg/ontology"
	"github.com/wdm0006/frameguard/pkg/validate"
)

const viewYAML = `
name: customer_input
fields:
  - name: customer_id
    display_name: Customer Id
    type: int
    nullable: false
    min_value: 1
  - name: region
    display_name: Region
    type: string
    allowed_values: [north, south]
    max_len: 5
  - name: score
    max_value: 10
`

const viewTOML = `
name = "customer_input"

[[fields]]
name = "customer_id"
display_name = "Customer Id"
type = "int"
nullable = false
min_value = 1.0

[[fields]]
name = "region"
display_name = "Region"
type = "string"
allowed_values = ["north", "south"]
max_len = 5

[[fields]]
name = "score"
max_value = 10.0
`

func writeView(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadYAMLAndTOMLAgree(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "views/customer.yaml", viewYAML)
	writeView(t, dir, "views/customer.toml", viewTOML)

	y, err := ontology.Load(dir, "views/customer.yaml")
	require.NoError(t, err)
	tm, err := ontology.Load(dir, filepath.Join(dir, "views/customer.toml"))
	require.NoError(t, err)

	for _, v := range []*ontology.View{y, tm} {
		assert.Equal(t, "customer_input", v.Name)
		assert.Equal(t, []string{"customer_id", "region", "score"}, v.Columns(false))
		assert.Equal(t, []string{"Customer Id", "Region", "score"}, v.Columns(true))
		assert.Equal(t, []string{"customer_id"}, v.NonNullableFields(false))
		assert.Equal(t, map[string]float64{"Customer Id": 1}, v.MinValueFields(true))
		assert.Equal(t, map[string]float64{"score": 10}, v.MaxValueFields(false))
		assert.Equal(t, map[string]int{"region": 5}, v.MaxLenFields(false))
		assert.Empty(t, v.MinLenFields(false))
		assert.Equal(t, map[string]string{"customer_id": "int", "region": "string"}, v.FieldTypes(false))
		assert.Equal(t, []any{"north", "south"}, v.AllowedValuesFields(false)["region"])
	}
	f, ok := y.Field("region")
	require.True(t, ok)
	assert.Equal(t, "Region", f.Label(true))
	assert.Equal(t, "Customer Id", y.ColumnMapping()["customer_id"])
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "v.json", `{"name":"v","fields":[{"name":"a","nullable":false},{"name":"b","nullable":true}]}`)
	v, err := ontology.Load(dir, "v.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v.NonNullableFields(false))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "dup.yaml", "fields:\n  - name: a\n  - name: a\n")
	writeView(t, dir, "type.yaml", "fields:\n  - name: a\n    type: blob\n")
	writeView(t, dir, "empty.yaml", "name: nothing\n")
	writeView(t, dir, "view.ini", "a=1")

	for _, p := range []string{"missing.yaml", "dup.yaml", "type.yaml", "empty.yaml", "view.ini", ""} {
		_, err := ontology.Load(dir, p)
		require.ErrorIs(t, err, validate.ErrSchemaSource, p)
	}
}

func TestViewDrivesValidation(t *testing.T) {
	dir := t.TempDir()
	writeView(t, dir, "customer.yaml", viewYAML)
	v, err := ontology.Load(dir, "customer.yaml")
	require.NoError(t, err)

	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "customer_id", Type: frame.KindInt, Nullable: true},
		{Name: "region", Type: frame.KindString, Nullable: true},
		{Name: "score", Type: frame.KindFloat, Nullable: true},
	}}
	f, err := frame.FromRows(s, [][]any{
		{1, "north", 2.5},
		{nil, "east", 11.0},
		{0, "southern", 3.0},
	})
	require.NoError(t, err)

	opts := validate.DefaultOptions()
	opts.Schema = v
	rep, err := validate.Run(f, opts)
	require.NoError(t, err)
	assert.False(t, rep.HardPass)
	assert.Equal(t, []string{
		"customer_id_non_nullable",
		"region_allowed_values",
		"customer_id_min_value",
		"score_max_value",
		"region_maxlen",
		"customer_id_type",
		"region_type",
	}, rep.Cells.Columns())
	assert.Equal(t, 1, rep.Clean.Rows())
}

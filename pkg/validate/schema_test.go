package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/frameguard/pkg/frame"
	"github.com/wdm0006/frameguard/pkg/validate"
)

type fakeSchema struct {
	columns []string
	display map[string]string
	nonNull []string
	allowed map[string][]any
	mins    map[string]float64
	types   map[string]string
}

func (s fakeSchema) name(c string, display bool) string {
	if d, ok := s.display[c]; ok && display {
		return d
	}
	return c
}

func (s fakeSchema) names(cols []string, display bool) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = s.name(c, display)
	}
	return out
}

func renameKeys[V any](s fakeSchema, m map[string]V, display bool) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[s.name(k, display)] = v
	}
	return out
}

func (s fakeSchema) Columns(d bool) []string           { return s.names(s.columns, d) }
func (s fakeSchema) NonNullableFields(d bool) []string { return s.names(s.nonNull, d) }
func (s fakeSchema) AllowedValuesFields(d bool) map[string][]any {
	return renameKeys(s, s.allowed, d)
}
func (s fakeSchema) MinValueFields(d bool) map[string]float64 { return renameKeys(s, s.mins, d) }
func (s fakeSchema) MaxValueFields(bool) map[string]float64   { return nil }
func (s fakeSchema) MinLenFields(bool) map[string]int         { return nil }
func (s fakeSchema) MaxLenFields(bool) map[string]int         { return nil }
func (s fakeSchema) FieldTypes(d bool) map[string]string      { return renameKeys(s, s.types, d) }

func TestSchemaRulesRunInRegistryOrder(t *testing.T) {
	f := threeCols(t)
	opts := validate.DefaultOptions()
	opts.Schema = fakeSchema{
		columns: []string{"col1", "col2", "col3"},
		nonNull: []string{"col2"},
		mins:    map[string]float64{"col2": 3},
		types:   map[string]string{"col3": "float"},
	}
	opts.Rules = validate.RuleSet{}.Add(validate.ISO2{Columns: []string{"col2"}})
	rep, err := validate.Run(f, opts)
	require.NoError(t, err)

	var got []validate.Kind
	for _, r := range rep.Summary {
		got = append(got, r.Type)
	}
	assert.Equal(t, []validate.Kind{
		validate.KindColumnsComplete,
		validate.KindColumnsOrder,
		validate.KindNonNullable,
		validate.KindMinValue,
		validate.KindType,
		validate.KindISO2,
	}, got)
	// the iso2 rule ignores non-string cells
	assert.True(t, rep.Summary[5].Pass)
}

func TestDisabledKindsOnlyAffectSchemaRules(t *testing.T) {
	opts := validate.DefaultOptions()
	opts.Schema = fakeSchema{columns: []string{"col1"}, nonNull: []string{"col1"}}
	opts.Disabled = []validate.Kind{validate.KindNonNullable, validate.KindColumnsComplete}
	rep, err := validate.Run(threeCols(t), opts)
	require.NoError(t, err)
	require.Len(t, rep.Summary, 1)
	assert.Equal(t, validate.KindColumnsOrder, rep.Summary[0].Type)

	opts.Rules = validate.RuleSet{}.Add(validate.NonNullable{Columns: []string{"col1"}})
	rep, err = validate.Run(threeCols(t), opts)
	require.NoError(t, err)
	require.Len(t, rep.Summary, 2)
	assert.Equal(t, validate.KindNonNullable, rep.Summary[1].Type)
}

func TestDisplayNames(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "Customer Id", Type: frame.KindInt, Nullable: true},
		{Name: "Region", Type: frame.KindString, Nullable: true},
	}}
	f, err := frame.FromRows(s, [][]any{{1, "north"}, {nil, "moon"}})
	require.NoError(t, err)

	opts := validate.DefaultOptions()
	opts.DisplayName = true
	opts.Schema = fakeSchema{
		columns: []string{"customer_id", "region"},
		display: map[string]string{"customer_id": "Customer Id", "region": "Region"},
		nonNull: []string{"customer_id"},
		allowed: map[string][]any{"region": {"north", "south"}},
	}
	rep, err := validate.Run(f, opts)
	require.NoError(t, err)
	assert.False(t, rep.Flawless)
	assert.Equal(t, []string{"Customer Id_non_nullable", "Region_allowed_values"}, rep.Cells.Columns())
	for _, r := range rep.Summary[:2] {
		assert.True(t, r.Pass, "%s", r.Type)
	}
	assert.Len(t, rep.HardErrors, 2)
	assert.Equal(t, 1, rep.Clean.Rows())
}

func TestParseRuleSet(t *testing.T) {
	rs, err := validate.ParseRuleSet(map[string]any{
		"non_nullable":   []any{"a", "b"},
		"allowed_values": map[string]any{"a": []any{1, 2, 4}},
		"min_value":      map[string]any{"c": 3},
		"maxlen":         map[any]any{"b": 2},
		"type":           map[string]any{"a": "int"},
		"duplicates":     []any{"a", "b"},
		"iso2":           "country",
		"condition":      "c > a",
	})
	require.NoError(t, err)
	assert.Len(t, rs, 8)
	assert.Equal(t, validate.NonNullable{Columns: []string{"a", "b"}}, rs[validate.KindNonNullable])
	assert.Equal(t, validate.MinValue{Bounds: map[string]float64{"c": 3}}, rs[validate.KindMinValue])
	assert.Equal(t, validate.MaxLen{Bounds: map[string]int{"b": 2}}, rs[validate.KindMaxLen])
	assert.Equal(t, validate.Duplicates{Groups: [][]string{{"a", "b"}}}, rs[validate.KindDuplicates])
	assert.Equal(t, validate.ISO2{Columns: []string{"country"}}, rs[validate.KindISO2])
	assert.Equal(t, validate.Condition{Exprs: map[string]string{"condition": "c > a"}}, rs[validate.KindCondition])

	rs, err = validate.ParseRuleSet(map[string]any{"duplicates": []any{[]any{"a"}, []any{"b", "c"}}})
	require.NoError(t, err)
	assert.Equal(t, validate.Duplicates{Groups: [][]string{{"a"}, {"b", "c"}}}, rs[validate.KindDuplicates])
}

func TestParseRuleSetErrors(t *testing.T) {
	_, err := validate.ParseRuleSet(map[string]any{"unique_email": []any{"a"}})
	require.ErrorIs(t, err, validate.ErrUnknownRule)

	for name, raw := range map[string]any{
		"minlen":         map[string]any{"b": -1},
		"min_value":      map[string]any{"c": "three"},
		"type":           map[string]any{"a": "blob"},
		"allowed_values": map[string]any{"a": 1},
		"non_nullable":   42,
	} {
		_, err := validate.ParseRuleSet(map[string]any{name: raw})
		require.ErrorIs(t, err, validate.ErrInvalidRule, name)
	}
}

func TestKinds(t *testing.T) {
	kinds := validate.Kinds()
	require.Len(t, kinds, 12)
	for _, k := range kinds {
		back, err := validate.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}
	assert.Equal(t, validate.SeverityHard, validate.KindType.Severity())
	assert.Equal(t, validate.SeveritySoft, validate.KindDuplicates.Severity())
}

func TestAccumulatorIsNotMutated(t *testing.T) {
	f := threeCols(t)
	acc, err := validate.NewAccumulator(f, nil)
	require.NoError(t, err)
	next, err := validate.Apply(f, validate.NonNullable{Columns: []string{"col1"}}, acc)
	require.NoError(t, err)
	assert.Empty(t, acc.Summary)
	assert.Empty(t, acc.Cells.Columns())
	assert.Len(t, next.Summary, 1)

	again, err := validate.Apply(f, validate.NonNullable{Columns: []string{"col1", "col3"}}, next)
	require.NoError(t, err)
	assert.Len(t, next.Summary, 1)
	assert.Len(t, again.Summary, 3)
	assert.Equal(t, []string{"col1_non_nullable", "col3_non_nullable"}, again.Cells.Columns())
}

func TestReportFrames(t *testing.T) {
	opts := validate.DefaultOptions()
	opts.HashColumns = []string{"col2"}
	opts.Rules = validate.RuleSet{}.Add(validate.NonNullable{Columns: []string{"col1"}})
	rep, err := validate.Run(threeCols(t), opts)
	require.NoError(t, err)

	sf, err := validate.SummaryFrame(rep.Summary)
	require.NoError(t, err)
	assert.Equal(t, 1, sf.Rows())
	v, ok := sf.Cell(0, "distinct_values")
	require.True(t, ok)
	assert.Equal(t, "[null]", v)

	cf, err := rep.Cells.Frame()
	require.NoError(t, err)
	assert.Equal(t, []string{"row_number", "col2", "col1_non_nullable"}, cf.ColumnNames())
	v, _ = cf.Cell(1, "col1_non_nullable")
	assert.Equal(t, false, v)

	mf, err := rep.MessagesFrame()
	require.NoError(t, err)
	assert.Equal(t, 2, mf.Rows())
	v, _ = mf.Cell(0, "validation_error")
	assert.Equal(t, "col1_non_nullable", v)
	v, _ = mf.Cell(1, "col2")
	assert.Equal(t, int64(6), v)

	assert.Contains(t, rep.String(), "FAIL hard=fail")
}

// misreportedKind wraps a frame and reports one column with the wrong kind,
// as a backend whose schema disagrees with its values would.
type misreportedKind struct {
	*frame.Frame
	column string
	kind   frame.Kind
}

func (m misreportedKind) ColumnKind(name string) (frame.Kind, bool) {
	if name == m.column {
		return m.kind, true
	}
	return m.Frame.ColumnKind(name)
}

func TestReportFramesSurfaceKindMismatch(t *testing.T) {
	tbl := misreportedKind{Frame: threeCols(t), column: "col1", kind: frame.KindBool}
	opts := validate.DefaultOptions()
	opts.HashColumns = []string{"col1"}
	opts.Rules = validate.RuleSet{}.Add(validate.NonNullable{Columns: []string{"col3"}})
	rep, err := validate.Run(tbl, opts)
	require.NoError(t, err)

	_, err = rep.Cells.Frame()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "col1")
	_, err = rep.MessagesFrame()
	require.Error(t, err)

	_, err = validate.SummaryFrame(rep.Summary)
	require.NoError(t, err)
}

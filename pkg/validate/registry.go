package validate

import "github.com/wdm0006/frameguard/pkg/frame"

// SchemaSource supplies expected columns and per-field constraints. The
// display flag selects display names instead of internal column names.
type SchemaSource interface {
	Columns(display bool) []string
	NonNullableFields(display bool) []string
	AllowedValuesFields(display bool) map[string][]any
	MinValueFields(display bool) map[string]float64
	MaxValueFields(display bool) map[string]float64
	MinLenFields(display bool) map[string]int
	MaxLenFields(display bool) map[string]int
	FieldTypes(display bool) map[string]string
}

// Validator applies one rule and returns the extended accumulator.
type Validator func(t frame.Table, r Rule, acc Accumulator) (Accumulator, error)

type registryEntry struct {
	kind     Kind
	validate Validator
	// fromSchema derives the rule from a schema source; nil for kinds that
	// are only available as explicit rules.
	fromSchema func(src SchemaSource, display bool) Rule
}

// registry lists every kind in execution order.
var registry = []registryEntry{
	{KindColumnsComplete, validateColumnsComplete, func(s SchemaSource, d bool) Rule { return ColumnsComplete{Expected: s.Columns(d)} }},
	{KindColumnsOrder, validateColumnsOrder, func(s SchemaSource, d bool) Rule { return ColumnsOrder{Expected: s.Columns(d)} }},
	{KindNonNullable, validateNonNullable, func(s SchemaSource, d bool) Rule { return NonNullable{Columns: s.NonNullableFields(d)} }},
	{KindAllowedValues, validateAllowedValues, func(s SchemaSource, d bool) Rule { return AllowedValues{Values: s.AllowedValuesFields(d)} }},
	{KindMinValue, validateMinValue, func(s SchemaSource, d bool) Rule { return MinValue{Bounds: s.MinValueFields(d)} }},
	{KindMaxValue, validateMaxValue, func(s SchemaSource, d bool) Rule { return MaxValue{Bounds: s.MaxValueFields(d)} }},
	{KindMinLen, validateMinLen, func(s SchemaSource, d bool) Rule { return MinLen{Bounds: s.MinLenFields(d)} }},
	{KindMaxLen, validateMaxLen, func(s SchemaSource, d bool) Rule { return MaxLen{Bounds: s.MaxLenFields(d)} }},
	{KindType, validateType, func(s SchemaSource, d bool) Rule { return TypeCheck{Types: s.FieldTypes(d)} }},
	{KindDuplicates, validateDuplicates, nil},
	{KindISO2, validateISO2, nil},
	{KindCondition, validateCondition, nil},
}

// Kinds returns every rule kind in execution order.
func Kinds() []Kind {
	out := make([]Kind, len(registry))
	for i, e := range registry {
		out[i] = e.kind
	}
	return out
}

// Apply runs a single rule against t, the way Run does for each configured
// rule.
func Apply(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	for _, e := range registry {
		if e.kind == r.Kind() {
			return e.validate(t, r, acc)
		}
	}
	return acc, invalidRule(r.Kind(), "no validator registered")
}

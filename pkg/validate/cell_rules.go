package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wdm0006/frameguard/pkg/frame"
)

func validateNonNullable(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(NonNullable)
	if !ok {
		return acc, invalidRule(KindNonNullable, "unexpected payload %T", r)
	}
	for _, col := range targetColumns(t, rule.Columns, KindNonNullable) {
		acc = checkCells(t, acc, col, KindNonNullable, KindNonNullable.String(), func(_ any, present bool) bool {
			return present
		})
	}
	return acc, nil
}

func validateAllowedValues(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(AllowedValues)
	if !ok {
		return acc, invalidRule(KindAllowedValues, "unexpected payload %T", r)
	}
	for _, col := range targetColumns(t, keysOf(rule.Values), KindAllowedValues) {
		allowed := make(map[string]struct{}, len(rule.Values[col]))
		for _, v := range rule.Values[col] {
			allowed[valueKey(v, true)] = struct{}{}
		}
		acc = checkCells(t, acc, col, KindAllowedValues, formatValues(rule.Values[col]), func(v any, present bool) bool {
			if !present {
				return true
			}
			_, ok := allowed[valueKey(v, true)]
			return ok
		})
	}
	return acc, nil
}

func validateMinValue(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(MinValue)
	if !ok {
		return acc, invalidRule(KindMinValue, "unexpected payload %T", r)
	}
	return validateBound(t, acc, KindMinValue, rule.Bounds, func(v, b float64) bool { return v >= b }), nil
}

func validateMaxValue(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(MaxValue)
	if !ok {
		return acc, invalidRule(KindMaxValue, "unexpected payload %T", r)
	}
	return validateBound(t, acc, KindMaxValue, rule.Bounds, func(v, b float64) bool { return v <= b }), nil
}

// validateBound compares numeric cells against a per-column bound; null and
// non-numeric cells pass.
func validateBound(t frame.Table, acc Accumulator, k Kind, bounds map[string]float64, cmp func(v, bound float64) bool) Accumulator {
	for _, col := range targetColumns(t, keysOf(bounds), k) {
		bound := bounds[col]
		acc = checkCells(t, acc, col, k, strconv.FormatFloat(bound, 'g', -1, 64), func(v any, present bool) bool {
			if !present {
				return true
			}
			f, ok := toFloat(v)
			if !ok {
				return true
			}
			return cmp(f, bound)
		})
	}
	return acc
}

func validateMinLen(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(MinLen)
	if !ok {
		return acc, invalidRule(KindMinLen, "unexpected payload %T", r)
	}
	return validateLength(t, acc, KindMinLen, rule.Bounds, func(n, b int) bool { return n >= b }), nil
}

func validateMaxLen(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(MaxLen)
	if !ok {
		return acc, invalidRule(KindMaxLen, "unexpected payload %T", r)
	}
	return validateLength(t, acc, KindMaxLen, rule.Bounds, func(n, b int) bool { return n <= b }), nil
}

// validateLength measures string cells in runes; other cells pass.
func validateLength(t frame.Table, acc Accumulator, k Kind, bounds map[string]int, cmp func(n, bound int) bool) Accumulator {
	for _, col := range targetColumns(t, keysOf(bounds), k) {
		bound := bounds[col]
		acc = checkCells(t, acc, col, k, strconv.Itoa(bound), func(v any, present bool) bool {
			s, ok := v.(string)
			if !present || !ok {
				return true
			}
			return cmp(utf8.RuneCountInString(s), bound)
		})
	}
	return acc
}

// ParseValueType normalises a type name used by the type rule.
func ParseValueType(name string) (frame.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "str", "string", "object", "text":
		return frame.KindString, nil
	case "int", "integer", "int64", "long":
		return frame.KindInt, nil
	case "float", "double", "float64", "number", "numeric", "decimal":
		return frame.KindFloat, nil
	case "bool", "boolean":
		return frame.KindBool, nil
	case "datetime", "date", "time", "timestamp":
		return frame.KindTime, nil
	}
	return frame.KindInvalid, fmt.Errorf("unknown type name %q", name)
}

func kindOf(v any) frame.Kind {
	switch v.(type) {
	case string:
		return frame.KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return frame.KindInt
	case float32, float64:
		return frame.KindFloat
	case bool:
		return frame.KindBool
	case time.Time:
		return frame.KindTime
	}
	return frame.KindInvalid
}

func validateType(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(TypeCheck)
	if !ok {
		return acc, invalidRule(KindType, "unexpected payload %T", r)
	}
	for _, col := range targetColumns(t, keysOf(rule.Types), KindType) {
		want, err := ParseValueType(rule.Types[col])
		if err != nil {
			return acc, invalidRule(KindType, "column %s: %v", col, err)
		}
		acc = checkCells(t, acc, col, KindType, rule.Types[col], func(v any, present bool) bool {
			if !present {
				return true
			}
			got := kindOf(v)
			return got == want || (want == frame.KindFloat && got == frame.KindInt)
		})
	}
	return acc, nil
}

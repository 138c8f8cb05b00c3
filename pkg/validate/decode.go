package validate

import (
	"fmt"
	"math"
	"sort"
)

// ParseRuleSet decodes a {rule name: payload} mapping as produced by the
// YAML, TOML or JSON decoders.
//
//	non_nullable:   [a, b]
//	allowed_values: {a: [1, 2, 4]}
//	min_value:      {c: 3}
//	maxlen:         {b: 2}
//	type:           {a: int}
//	duplicates:     [[a, b], [c]]   # or a single group: [a, b]
//	iso2:           [country]
//	condition:      {c_gt_a: "c > a"}
func ParseRuleSet(cfg map[string]any) (RuleSet, error) {
	rs := RuleSet{}
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		r, err := decodeRule(k, cfg[name])
		if err != nil {
			return nil, err
		}
		rs.Add(r)
	}
	return rs, nil
}

func decodeRule(k Kind, raw any) (Rule, error) {
	switch k {
	case KindColumnsComplete, KindColumnsOrder, KindNonNullable, KindISO2:
		cols, err := asStrings(raw)
		if err != nil {
			return nil, invalidRule(k, "%v", err)
		}
		switch k {
		case KindColumnsComplete:
			return ColumnsComplete{Expected: cols}, nil
		case KindColumnsOrder:
			return ColumnsOrder{Expected: cols}, nil
		case KindNonNullable:
			return NonNullable{Columns: cols}, nil
		default:
			return ISO2{Columns: cols}, nil
		}
	case KindAllowedValues:
		m, err := asMap(raw)
		if err != nil {
			return nil, invalidRule(k, "%v", err)
		}
		values := make(map[string][]any, len(m))
		for col, v := range m {
			list, ok := v.([]any)
			if !ok {
				return nil, invalidRule(k, "column %s: want a list, got %T", col, v)
			}
			values[col] = list
		}
		return AllowedValues{Values: values}, nil
	case KindMinValue, KindMaxValue:
		m, err := asMap(raw)
		if err != nil {
			return nil, invalidRule(k, "%v", err)
		}
		bounds := make(map[string]float64, len(m))
		for col, v := range m {
			f, ok := toFloat(v)
			if !ok {
				return nil, invalidRule(k, "column %s: want a number, got %T", col, v)
			}
			bounds[col] = f
		}
		if k == KindMinValue {
			return MinValue{Bounds: bounds}, nil
		}
		return MaxValue{Bounds: bounds}, nil
	case KindMinLen, KindMaxLen:
		m, err := asMap(raw)
		if err != nil {
			return nil, invalidRule(k, "%v", err)
		}
		bounds := make(map[string]int, len(m))
		for col, v := range m {
			f, ok := toFloat(v)
			if !ok || f != math.Trunc(f) || f < 0 {
				return nil, invalidRule(k, "column %s: want a non-negative integer, got %v", col, v)
			}
			bounds[col] = int(f)
		}
		if k == KindMinLen {
			return MinLen{Bounds: bounds}, nil
		}
		return MaxLen{Bounds: bounds}, nil
	case KindType:
		m, err := asMap(raw)
		if err != nil {
			return nil, invalidRule(k, "%v", err)
		}
		types := make(map[string]string, len(m))
		for col, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, invalidRule(k, "column %s: want a type name, got %T", col, v)
			}
			if _, err := ParseValueType(s); err != nil {
				return nil, invalidRule(k, "column %s: %v", col, err)
			}
			types[col] = s
		}
		return TypeCheck{Types: types}, nil
	case KindDuplicates:
		groups, err := asGroups(raw)
		if err != nil {
			return nil, invalidRule(k, "%v", err)
		}
		return Duplicates{Groups: groups}, nil
	case KindCondition:
		if s, ok := raw.(string); ok {
			return Condition{Exprs: map[string]string{"condition": s}}, nil
		}
		m, err := asMap(raw)
		if err != nil {
			return nil, invalidRule(k, "%v", err)
		}
		exprs := make(map[string]string, len(m))
		for name, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, invalidRule(k, "%s: want an expression string, got %T", name, v)
			}
			exprs[name] = s
		}
		return Condition{Exprs: exprs}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownRule, k)
}

func asMap(raw any) (map[string]any, error) {
	switch m := raw.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("want a mapping of column to value, got %T", raw)
}

func asStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, len(v))
		for i, x := range v {
			s, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: want a column name, got %T", i, x)
			}
			out[i] = s
		}
		return out, nil
	case map[string]any:
		// mapping form {col: true}; keys are the columns
		out := make([]string, 0, len(v))
		for k := range v {
			out = append(out, k)
		}
		sort.Strings(out)
		return out, nil
	}
	return nil, fmt.Errorf("want a list of column names, got %T", raw)
}

func asGroups(raw any) ([][]string, error) {
	list, ok := raw.([]any)
	if !ok {
		cols, err := asStrings(raw)
		if err != nil {
			return nil, err
		}
		return [][]string{cols}, nil
	}
	nested := len(list) > 0
	for _, item := range list {
		if _, ok := item.([]any); !ok {
			nested = false
			break
		}
	}
	if !nested {
		cols, err := asStrings(list)
		if err != nil {
			return nil, err
		}
		return [][]string{cols}, nil
	}
	groups := make([][]string, len(list))
	for i, item := range list {
		cols, err := asStrings(item)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		groups[i] = cols
	}
	return groups, nil
}

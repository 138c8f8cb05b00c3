package validate

import (
	"github.com/expr-lang/expr"

	"github.com/wdm0006/frameguard/pkg/frame"
)

func validateCondition(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(Condition)
	if !ok {
		return acc, invalidRule(KindCondition, "unexpected payload %T", r)
	}
	names := t.ColumnNames()
	for _, name := range keysOf(rule.Exprs) {
		src := rule.Exprs[name]
		program, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
		if err != nil {
			return acc, invalidRule(KindCondition, "%s: %v", name, err)
		}
		mask := make([]bool, t.Rows())
		env := make(map[string]any, len(names))
		for i := range mask {
			for _, c := range names {
				if v, ok := t.Cell(i, c); ok {
					env[c] = v
				} else {
					env[c] = nil
				}
			}
			out, err := expr.Run(program, env)
			if err != nil {
				continue
			}
			mask[i], _ = out.(bool)
		}
		// offending rows are reported by position
		row := newSummary(name, KindCondition, src, mask, func(i int) any { return i })
		acc = acc.add(row, cellName(name, KindCondition), mask)
	}
	return acc, nil
}

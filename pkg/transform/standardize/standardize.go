// Package standardize rewrites string columns before validation so that
// cosmetic variations (padding, case, spelling) do not read as failures.
package standardize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// mapStrings returns f with column replaced by fn applied to every non-null
// cell. Missing and non-string columns leave f unchanged.
func mapStrings(f *frame.Frame, step, column string, fn func(string) string) (*frame.Frame, error) {
	col, ok := f.ColumnByName(column)
	if !ok {
		log.WithField("step", step).Debugf("column %s not found, skipped", column)
		return f, nil
	}
	c, ok := col.(*frame.StringColumn)
	if !ok {
		log.WithField("step", step).Debugf("column %s is %v, skipped", column, col.Kind())
		return f, nil
	}
	out := frame.NewStringColumn(column, c.Len())
	for i := 0; i < c.Len(); i++ {
		v, ok := c.Get(i)
		if !ok {
			out.SetNull(i)
			continue
		}
		out.Set(i, fn(v))
	}
	return f.WithColumn(out)
}

type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return mapStrings(f, t.Name(), t.Column, strings.TrimSpace)
}

type Lower struct{ Column string }

func (t *Lower) Name() string { return "lower" }

func (t *Lower) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return mapStrings(f, t.Name(), t.Column, strings.ToLower)
}

// MapValues replaces exact matches; other values pass through.
type MapValues struct {
	Column string
	Map    map[string]string
}

func (t *MapValues) Name() string { return "map_values" }

func (t *MapValues) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return mapStrings(f, t.Name(), t.Column, func(v string) string {
		if nv, ok := t.Map[v]; ok {
			return nv
		}
		return v
	})
}

type RegexReplace struct {
	Column  string
	Pattern string
	Replace string
	re      *regexp.Regexp
}

func (t *RegexReplace) Name() string { return "regex_replace" }

// Compile checks the pattern; Apply calls it on first use.
func (t *RegexReplace) Compile() error {
	if t.re != nil {
		return nil
	}
	re, err := regexp.Compile(t.Pattern)
	if err != nil {
		return fmt.Errorf("regex_replace %s: %w", t.Column, err)
	}
	t.re = re
	return nil
}

func (t *RegexReplace) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := t.Compile(); err != nil {
		return nil, err
	}
	return mapStrings(f, t.Name(), t.Column, func(v string) string {
		return t.re.ReplaceAllString(v, t.Replace)
	})
}

// Params carries the step-specific settings for New.
type Params struct {
	Map     map[string]string
	Pattern string
	Replace string
}

// New builds a step by name.
func New(op, column string, p Params) (frame.Transform, error) {
	switch op {
	case "trim":
		return &Trim{Column: column}, nil
	case "lower":
		return &Lower{Column: column}, nil
	case "map_values":
		return &MapValues{Column: column, Map: p.Map}, nil
	case "regex_replace":
		t := &RegexReplace{Column: column, Pattern: p.Pattern, Replace: p.Replace}
		if err := t.Compile(); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown normalize step %q", op)
}

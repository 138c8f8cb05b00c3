// Package ontology loads view files describing the expected columns of a
// dataset and the constraints on each field.
//
// A view lists fields in column order:
//
//	name: customer_input
//	fields:
//	  - name: customer_id
//	    display_name: Customer Id
//	    type: int
//	    nullable: false
//	    min_value: 1
//	  - name: region
//	    allowed_values: [north, south]
//	    max_len: 8
package ontology

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wdm0006/frameguard/internal/codec"
	"github.com/wdm0006/frameguard/pkg/validate"
)

// Field describes one column of a view.
type Field struct {
	Name          string   `yaml:"name" toml:"name" json:"name"`
	DisplayName   string   `yaml:"display_name,omitempty" toml:"display_name,omitempty" json:"display_name,omitempty"`
	Type          string   `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Nullable      *bool    `yaml:"nullable,omitempty" toml:"nullable,omitempty" json:"nullable,omitempty"`
	AllowedValues []any    `yaml:"allowed_values,omitempty" toml:"allowed_values,omitempty" json:"allowed_values,omitempty"`
	MinValue      *float64 `yaml:"min_value,omitempty" toml:"min_value,omitempty" json:"min_value,omitempty"`
	MaxValue      *float64 `yaml:"max_value,omitempty" toml:"max_value,omitempty" json:"max_value,omitempty"`
	MinLen        *int     `yaml:"min_len,omitempty" toml:"min_len,omitempty" json:"min_len,omitempty"`
	MaxLen        *int     `yaml:"max_len,omitempty" toml:"max_len,omitempty" json:"max_len,omitempty"`
}

// Label returns the display name when asked for and set, else the name.
func (f Field) Label(display bool) string {
	if display && f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Name
}

// View is an ordered set of fields. It implements validate.SchemaSource.
type View struct {
	Name   string  `yaml:"name" toml:"name" json:"name"`
	Fields []Field `yaml:"fields" toml:"fields" json:"fields"`
}

var _ validate.SchemaSource = (*View)(nil)

// Load reads a view file. A relative path is resolved against base.
func Load(base, path string) (*View, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty view path", validate.ErrSchemaSource)
	}
	if !filepath.IsAbs(path) && base != "" {
		path = filepath.Join(base, path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", validate.ErrSchemaSource, err)
	}
	var v View
	if err := codec.DecodeFile(path, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", validate.ErrSchemaSource, err)
	}
	if err := v.check(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", validate.ErrSchemaSource, path, err)
	}
	return &v, nil
}

func (v *View) check() error {
	if len(v.Fields) == 0 {
		return fmt.Errorf("view %q has no fields", v.Name)
	}
	seen := make(map[string]bool, len(v.Fields))
	for i, f := range v.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if f.Type != "" {
			if _, err := validate.ParseValueType(f.Type); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
			return fmt.Errorf("field %q: min_value %v above max_value %v", f.Name, *f.MinValue, *f.MaxValue)
		}
		if (f.MinLen != nil && *f.MinLen < 0) || (f.MaxLen != nil && *f.MaxLen < 0) {
			return fmt.Errorf("field %q: negative length bound", f.Name)
		}
	}
	return nil
}

// Field looks a field up by name.
func (v *View) Field(name string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ColumnMapping maps each field name to its display label.
func (v *View) ColumnMapping() map[string]string {
	out := make(map[string]string, len(v.Fields))
	for _, f := range v.Fields {
		out[f.Name] = f.Label(true)
	}
	return out
}

func (v *View) Columns(display bool) []string {
	out := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		out[i] = f.Label(display)
	}
	return out
}

// NonNullableFields lists fields declared nullable: false. Fields that
// leave nullable unset are nullable.
func (v *View) NonNullableFields(display bool) []string {
	var out []string
	for _, f := range v.Fields {
		if f.Nullable != nil && !*f.Nullable {
			out = append(out, f.Label(display))
		}
	}
	return out
}

func (v *View) AllowedValuesFields(display bool) map[string][]any {
	out := make(map[string][]any)
	for _, f := range v.Fields {
		if len(f.AllowedValues) > 0 {
			out[f.Label(display)] = f.AllowedValues
		}
	}
	return out
}

func (v *View) MinValueFields(display bool) map[string]float64 {
	return collect(v, display, func(f Field) *float64 { return f.MinValue })
}

func (v *View) MaxValueFields(display bool) map[string]float64 {
	return collect(v, display, func(f Field) *float64 { return f.MaxValue })
}

func (v *View) MinLenFields(display bool) map[string]int {
	return collect(v, display, func(f Field) *int { return f.MinLen })
}

func (v *View) MaxLenFields(display bool) map[string]int {
	return collect(v, display, func(f Field) *int { return f.MaxLen })
}

func (v *View) FieldTypes(display bool) map[string]string {
	out := make(map[string]string)
	for _, f := range v.Fields {
		if f.Type != "" {
			out[f.Label(display)] = f.Type
		}
	}
	return out
}

func collect[T any](v *View, display bool, get func(Field) *T) map[string]T {
	out := make(map[string]T)
	for _, f := range v.Fields {
		if p := get(f); p != nil {
			out[f.Label(display)] = *p
		}
	}
	return out
}

// Package config loads the frameguard run configuration from a YAML, TOML
// or JSON file, with environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/wdm0006/frameguard/internal/codec"
	"github.com/wdm0006/frameguard/pkg/frame"
	"github.com/wdm0006/frameguard/pkg/transform/binning"
	"github.com/wdm0006/frameguard/pkg/transform/standardize"
	"github.com/wdm0006/frameguard/pkg/validate"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FRAMEGUARD_"

var ErrInvalidConfig = errors.New("invalid config")

type Input struct {
	Path      string `yaml:"path" toml:"path" json:"path" env:"INPUT_PATH"`
	Type      string `yaml:"type" toml:"type" json:"type" env:"INPUT_TYPE"` // csv|jsonl|parquet|postgres (default csv)
	HasHeader *bool  `yaml:"has_header" toml:"has_header" json:"has_header"`
	Delimiter string `yaml:"delimiter" toml:"delimiter" json:"delimiter"`
	DSN       string `yaml:"dsn" toml:"dsn" json:"dsn" env:"INPUT_DSN"`
	Query     string `yaml:"query" toml:"query" json:"query" env:"INPUT_QUERY"`
}

type Output struct {
	Dir  string `yaml:"dir" toml:"dir" json:"dir" env:"OUTPUT_DIR"`
	Type string `yaml:"type" toml:"type" json:"type" env:"OUTPUT_TYPE"` // csv|jsonl|parquet (default csv)
}

type Validation struct {
	ErrorTolerance *float64       `yaml:"error_tolerance" toml:"error_tolerance" json:"error_tolerance"`
	View           string         `yaml:"view" toml:"view" json:"view" env:"VIEW"`
	BasePath       string         `yaml:"base_path" toml:"base_path" json:"base_path" env:"BASE_PATH"`
	HashColumns    []string       `yaml:"hash_columns" toml:"hash_columns" json:"hash_columns"`
	Disable        []string       `yaml:"disable" toml:"disable" json:"disable"`
	DisplayName    bool           `yaml:"display_name" toml:"display_name" json:"display_name"`
	Rules          map[string]any `yaml:"rules" toml:"rules" json:"rules"`
}

type BinStep struct {
	From   string    `yaml:"from" toml:"from" json:"from"`
	To     string    `yaml:"to" toml:"to" json:"to"`
	Bins   []float64 `yaml:"bins" toml:"bins" json:"bins"`
	Labels []string  `yaml:"labels" toml:"labels" json:"labels"`
}

// NormalizeStep rewrites a string column before binning and validation.
// Op is trim, lower, map_values or regex_replace.
type NormalizeStep struct {
	Op      string            `yaml:"op" toml:"op" json:"op"`
	Column  string            `yaml:"column" toml:"column" json:"column"`
	Map     map[string]string `yaml:"map" toml:"map" json:"map"`
	Pattern string            `yaml:"pattern" toml:"pattern" json:"pattern"`
	Replace string            `yaml:"replace" toml:"replace" json:"replace"`
}

type History struct {
	Path string `yaml:"path" toml:"path" json:"path" env:"HISTORY_PATH"`
}

// Config is one validation run.
type Config struct {
	Input      Input           `yaml:"input" toml:"input" json:"input"`
	Output     Output          `yaml:"output" toml:"output" json:"output"`
	Validation Validation      `yaml:"validation" toml:"validation" json:"validation"`
	Normalize  []NormalizeStep `yaml:"normalize" toml:"normalize" json:"normalize"`
	Bins       []BinStep       `yaml:"bins" toml:"bins" json:"bins"`
	History    History         `yaml:"history" toml:"history" json:"history"`
}

// Load decodes path, applies FRAMEGUARD_* environment overrides (a .env
// file in the working directory is honoured) and checks the result. An
// unset base_path defaults to the config file's directory.
func Load(path string) (*Config, error) {
	var c Config
	if err := codec.DecodeFile(path, &c); err != nil {
		return nil, err
	}
	// .env is optional
	_ = godotenv.Load()
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	if c.Validation.BasePath == "" {
		c.Validation.BasePath = filepath.Dir(path)
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return &c, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Check validates the configuration without touching any data.
func (c *Config) Check() error {
	switch c.InputType() {
	case "csv", "jsonl", "parquet":
		if c.Input.Path == "" {
			return invalid("input.path is required for %s input", c.InputType())
		}
	case "postgres":
		if c.Input.DSN == "" || c.Input.Query == "" {
			return invalid("postgres input needs input.dsn and input.query")
		}
	default:
		return invalid("unsupported input type %q", c.Input.Type)
	}
	switch c.OutputType() {
	case "csv", "jsonl", "parquet":
	default:
		return invalid("unsupported output type %q", c.Output.Type)
	}
	if len([]rune(c.Input.Delimiter)) > 1 {
		return invalid("input.delimiter must be a single character")
	}
	// values above 1 are allowed and disable soft failures
	if t := c.Validation.ErrorTolerance; t != nil && (*t < 0 || math.IsNaN(*t)) {
		return invalid("validation.error_tolerance %v must be a non-negative number", *t)
	}
	if _, err := c.DisabledKinds(); err != nil {
		return invalid("%v", err)
	}
	if _, err := c.RuleSet(); err != nil {
		return invalid("%v", err)
	}
	if _, err := c.Normalizers(); err != nil {
		return invalid("%v", err)
	}
	for i, b := range c.Binners() {
		if err := b.Check(); err != nil {
			return invalid("bins[%d]: %v", i, err)
		}
	}
	return nil
}

func (c *Config) InputType() string {
	if c.Input.Type == "" {
		return "csv"
	}
	return strings.ToLower(c.Input.Type)
}

func (c *Config) OutputType() string {
	if c.Output.Type == "" {
		return "csv"
	}
	return strings.ToLower(c.Output.Type)
}

// HasHeader defaults to true.
func (c *Config) HasHeader() bool {
	return c.Input.HasHeader == nil || *c.Input.HasHeader
}

// Delimiter returns the configured delimiter, or 0 to sniff.
func (c *Config) Delimiter() rune {
	for _, r := range c.Input.Delimiter {
		return r
	}
	return 0
}

func (c *Config) RuleSet() (validate.RuleSet, error) {
	if len(c.Validation.Rules) == 0 {
		return validate.RuleSet{}, nil
	}
	return validate.ParseRuleSet(c.Validation.Rules)
}

func (c *Config) DisabledKinds() ([]validate.Kind, error) {
	out := make([]validate.Kind, 0, len(c.Validation.Disable))
	for _, name := range c.Validation.Disable {
		k, err := validate.ParseKind(name)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Options builds validation options around an optional schema source.
func (c *Config) Options(schema validate.SchemaSource) (validate.Options, error) {
	opts := validate.DefaultOptions()
	if c.Validation.ErrorTolerance != nil {
		opts.ErrorTolerance = *c.Validation.ErrorTolerance
	}
	rules, err := c.RuleSet()
	if err != nil {
		return opts, err
	}
	disabled, err := c.DisabledKinds()
	if err != nil {
		return opts, err
	}
	opts.Rules = rules
	opts.Disabled = disabled
	opts.Schema = schema
	opts.HashColumns = c.Validation.HashColumns
	opts.DisplayName = c.Validation.DisplayName
	return opts, nil
}

func (c *Config) Binners() []*binning.ColumnBinner {
	out := make([]*binning.ColumnBinner, len(c.Bins))
	for i, b := range c.Bins {
		out[i] = &binning.ColumnBinner{From: b.From, To: b.To, Bins: b.Bins, Labels: b.Labels}
	}
	return out
}

func (c *Config) Normalizers() ([]frame.Transform, error) {
	out := make([]frame.Transform, 0, len(c.Normalize))
	for i, n := range c.Normalize {
		if n.Column == "" {
			return nil, fmt.Errorf("normalize[%d]: column is required", i)
		}
		t, err := standardize.New(n.Op, n.Column, standardize.Params{Map: n.Map, Pattern: n.Pattern, Replace: n.Replace})
		if err != nil {
			return nil, fmt.Errorf("normalize[%d]: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Pipeline chains the normalize steps, then the binning steps. Load has
// already checked both.
func (c *Config) Pipeline() *frame.Pipeline {
	p := frame.NewPipeline()
	norm, _ := c.Normalizers()
	for _, t := range norm {
		p.Add(t)
	}
	for _, b := range c.Binners() {
		p.Add(b)
	}
	return p
}

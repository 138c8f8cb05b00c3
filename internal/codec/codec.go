// Package codec decodes YAML, TOML and JSON documents chosen by file
// extension.
package codec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Format names a supported document syntax.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("unsupported config extension %q (want .yaml, .yml, .toml or .json)", filepath.Ext(path))
}

// Unmarshal decodes b in the given format into v.
func Unmarshal(f Format, b []byte, v any) error {
	switch f {
	case YAML:
		return yaml.Unmarshal(b, v)
	case TOML:
		return toml.Unmarshal(b, v)
	case JSON:
		return json.Unmarshal(b, v)
	}
	return fmt.Errorf("unknown format %q", f)
}

// DecodeFile reads path and decodes it according to its extension.
func DecodeFile(path string, v any) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := Unmarshal(f, b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for file extensions without a parser.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// FormatOf picks a format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFile reads a TOML or YAML file into a tree suitable for New.
func LoadFile(path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := Load(b, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Load parses data in the given format.
func Load(data []byte, format Format) (map[string]any, error) {
	tree := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	out, _ := normalize(tree).(map[string]any)
	return out, nil
}

package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig is the on-disk form of Config. Durations stay strings until
// ApplyFileConfig parses them; Once is a pointer so an absent key leaves
// the current value alone.
type FileConfig struct {
	Definition      string `toml:"definition"`
	Root            string `toml:"root"`
	Env             string `toml:"env"`
	LogLevel        string `toml:"log_level"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	Once            *bool  `toml:"once"`
}

// LoadFileConfig reads a TOML settings file. Keys that do not map onto
// FileConfig are rejected so that typos surface instead of being ignored.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fc, fmt.Errorf("%s: unknown settings:\n%s", path, strict.String())
		}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return fc, fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return fc, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.trails/config.toml, or "" when the home
// directory cannot be resolved.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".trails", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("definition", fc.Definition, &cfg.Definition)
	s.setString("root", fc.Root, &cfg.Root)
	s.setString("env", fc.Env, &cfg.Env)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

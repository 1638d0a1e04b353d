package cliconfig

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.Once {
		t.Error("Once should default to false")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name           string
		config         Config
		wantErr        bool
		wantDefinition string
		wantLevel      string
	}{
		{
			name: "valid minimal config",
			config: Config{
				Definition:      "/srv/app/trails.toml",
				ShutdownTimeout: time.Second,
			},
			wantDefinition: "/srv/app/trails.toml",
			wantLevel:      "info",
		},
		{
			name: "definition derived from root",
			config: Config{
				Root:            "/srv/app",
				ShutdownTimeout: time.Second,
			},
			wantDefinition: filepath.Join("/srv/app", DefaultDefinitionFile),
			wantLevel:      "info",
		},
		{
			name: "missing definition and root",
			config: Config{
				ShutdownTimeout: time.Second,
			},
			wantErr: true,
		},
		{
			name: "log level is normalized",
			config: Config{
				Definition:      "app.yaml",
				LogLevel:        " DEBUG ",
				ShutdownTimeout: time.Second,
			},
			wantDefinition: "app.yaml",
			wantLevel:      "debug",
		},
		{
			name: "invalid log level",
			config: Config{
				Definition:      "app.yaml",
				LogLevel:        "loud",
				ShutdownTimeout: time.Second,
			},
			wantErr: true,
		},
		{
			name: "zero shutdown timeout",
			config: Config{
				Definition: "app.yaml",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.Definition != tt.wantDefinition {
				t.Errorf("Definition = %v, want %v", cfg.Definition, tt.wantDefinition)
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, tt.wantLevel)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	if got := (Config{LogLevel: "warn"}).Level(); got != zerolog.WarnLevel {
		t.Errorf("Level() = %v, want warn", got)
	}
	if got := (Config{}).Level(); got != zerolog.InfoLevel {
		t.Errorf("Level() = %v, want info", got)
	}
}

func TestConfigSetter(t *testing.T) {
	s := newConfigSetter(map[string]bool{"root": true})

	root := "/flag"
	s.setString("root", "/file", &root)
	if root != "/flag" {
		t.Errorf("changed flag was overwritten: %v", root)
	}

	def := ""
	s.setString("definition", "", &def)
	if def != "" {
		t.Errorf("empty value should not be applied, got %v", def)
	}

	var d time.Duration
	if err := s.setDuration("shutdown-timeout", "bogus", &d); err == nil {
		t.Error("expected parse error for invalid duration")
	}

	once := false
	s.setBoolFromString("once", "1", &once)
	if !once {
		t.Error("\"1\" should parse as true")
	}
}

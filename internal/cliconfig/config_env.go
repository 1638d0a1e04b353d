package cliconfig

import (
	"os"

	"github.com/bft-labs/trails/pkg/env"
)

// ApplyEnvConfig applies configuration from environment variables (TRAILS_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("definition", os.Getenv("TRAILS_DEFINITION"), &cfg.Definition)
	s.setString("root", os.Getenv("TRAILS_ROOT"), &cfg.Root)
	s.setString("env", os.Getenv(env.ModeKey), &cfg.Env)
	s.setString("log-level", os.Getenv("TRAILS_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("shutdown-timeout", os.Getenv("TRAILS_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv("TRAILS_ONCE"), &cfg.Once)

	return nil
}

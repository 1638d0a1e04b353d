package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/trails/internal/cliconfig"
	"github.com/bft-labs/trails/pkg/log"
	"github.com/bft-labs/trails/pkg/trailpack"
	"github.com/bft-labs/trails/pkg/trails"
	"github.com/bft-labs/trails/plugins/configwatcher"
)

const helpDescription = `
Boot an application out of ordered trailpacks described in a definition file.

The definition is a TOML or YAML file with a [pkg] table, an [api] table and a
[config] tree. config.main.packs lists trailpacks by name; the built-in catalog
provides "configwatcher".

Settings come from flags, then TRAILS_* environment variables, then
$HOME/.trails/config.toml.
`

var exampleUsage = strings.TrimSpace(`
  trails --definition ./trails.toml
  trails --root /srv/shop --env production --log-level debug
  trails --definition ./trails.yaml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return trails.Version
}

// catalog lists the trailpacks a definition file can name.
func catalog() trailpack.Catalog {
	c := trailpack.Catalog{}
	configwatcher.Register(c)
	return c
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:          "trails",
		Short:        "Boot a trails application from a definition file",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			return run(cmd.Context(), &cfg, cfgPath, changed)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to settings file (default: $HOME/.trails/config.toml)")
	root.Flags().StringVarP(&cfg.Definition, "definition", "d", cfg.Definition, "application definition file (TOML or YAML)")
	root.Flags().StringVar(&cfg.Root, "root", cfg.Root, "application root directory (default: working directory)")
	root.Flags().StringVar(&cfg.Env, "env", cfg.Env, "application mode, overrides TRAILS_ENV")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "maximum time to wait for background workers on stop")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "start the application, then stop it and exit")

	if err := root.Execute(); err != nil {
		logger := cliconfig.Logger(zerolog.InfoLevel)
		logger.Error().Err(err).Msg("trails")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *cliconfig.Config, cfgPath string, changed map[string]bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Settings file first (default $HOME/.trails/config.toml), then env, flags win throughout.
	// An explicit --config must exist; the default one is optional.
	cfgFile := cfgPath
	if cfgFile == "" {
		if p := cliconfig.DefaultConfigPath(); p != "" && cliconfig.FileExists(p) {
			cfgFile = p
		}
	}
	if cfgFile != "" {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	if cfg.Root == "" && cfg.Definition == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg.Root = wd
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cliconfig.Logger(cfg.Level())
	logger.Info().Interface("config", cfg).Msg("configuration")

	def, err := cliconfig.LoadDefinition(cfg.Definition)
	if err != nil {
		return err
	}

	workDir := cfg.Root
	if workDir == "" {
		workDir = filepath.Dir(cfg.Definition)
	}
	if abs, err := filepath.Abs(workDir); err == nil {
		workDir = abs
	}

	opts := []trails.Option{
		trails.WithLogger(log.NewZerologAdapterWithLogger(logger)),
		trails.WithCatalog(catalog()),
		trails.WithWorkingDir(workDir),
		trails.WithShutdownTimeout(cfg.ShutdownTimeout),
		trails.WithEventHandler(trails.EventHandlerFunc(func(e trails.StateChangeEvent) {
			logger.Debug().Stringer("from", e.Previous).Stringer("to", e.Current).Str("reason", e.Reason).Msg("state change")
		})),
	}
	if cfg.Env != "" {
		opts = append(opts, trails.WithMode(cfg.Env))
	}

	app, err := trails.New(def, opts...)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		stopErr := app.Stop(context.Background())
		return errors.Join(fmt.Errorf("start application: %w", err), stopErr)
	}

	if !cfg.Once {
		<-ctx.Done()
		logger.Info().Msg("received signal, stopping...")
	}

	if err := app.Stop(context.Background()); err != nil {
		return fmt.Errorf("stop application: %w", err)
	}
	return nil
}

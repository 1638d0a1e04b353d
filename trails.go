// Package trails boots applications out of ordered plugins (trailpacks).
//
// Example usage:
//
//	def, err := trails.LoadDefinition("trails.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := trails.Run(ctx, def, trails.WithCatalog(catalog)); err != nil {
//	    log.Fatal(err)
//	}
//
// The engine lives in pkg/trails; the plugin contract in pkg/trailpack.
package trails

import (
	"context"
	"errors"

	"github.com/bft-labs/trails/internal/cliconfig"
	"github.com/bft-labs/trails/pkg/trailpack"
	engine "github.com/bft-labs/trails/pkg/trails"
)

type (
	// App is one application instance.
	App = engine.App

	// Definition describes an application.
	Definition = engine.Definition

	// Option configures optional behavior of an App.
	Option = engine.Option

	// Trailpack is the plugin contract.
	Trailpack = trailpack.Trailpack

	// Pkg is package metadata of an application or a trailpack.
	Pkg = trailpack.Pkg
)

// Options re-exported from pkg/trails.
var (
	WithLogger          = engine.WithLogger
	WithEnviron         = engine.WithEnviron
	WithMode            = engine.WithMode
	WithCatalog         = engine.WithCatalog
	WithFs              = engine.WithFs
	WithWorkingDir      = engine.WithWorkingDir
	WithMaxListeners    = engine.WithMaxListeners
	WithShutdownTimeout = engine.WithShutdownTimeout
	WithEventHandler    = engine.WithEventHandler
)

// New builds an App from def. See pkg/trails.New.
func New(def *Definition, opts ...Option) (*App, error) {
	return engine.New(def, opts...)
}

// Run builds and starts an App, blocks until ctx is cancelled, then stops it.
func Run(ctx context.Context, def *Definition, opts ...Option) error {
	app, err := engine.New(def, opts...)
	if err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return errors.Join(err, app.Stop(context.WithoutCancel(ctx)))
	}
	<-ctx.Done()
	return app.Stop(context.WithoutCancel(ctx))
}

// LoadDefinition reads an application definition from a TOML or YAML file.
func LoadDefinition(path string) (*Definition, error) {
	return cliconfig.LoadDefinition(path)
}

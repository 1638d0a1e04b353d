package trailpack

import (
	"context"

	"github.com/bft-labs/trails/pkg/config"
	"github.com/bft-labs/trails/pkg/env"
	"github.com/bft-labs/trails/pkg/event"
	"github.com/bft-labs/trails/pkg/log"
)

// Pkg is package metadata of an application or a trailpack.
type Pkg struct {
	Name        string         `config:"name"`
	Version     string         `config:"version"`
	Description string         `config:"description"`
	Meta        map[string]any `config:",remain"`
}

// App is the view of a running application handed to trailpacks.
type App interface {
	// ID uniquely identifies this application instance.
	ID() string
	Pkg() Pkg
	API() map[string]any
	Config() *config.Store
	Env() env.Snapshot
	Logger() log.Logger

	// Emit publishes an event on the application's bus.
	Emit(name string, args ...any) bool
	// After resolves once the event expression is satisfied.
	After(expr any) *event.Future
	// OnceAny resolves with the payload of the first of names to fire.
	OnceAny(names ...string) *event.Future

	// Go runs fn in the background until the application stops.
	// ctx is cancelled when Stop begins; Stop waits for fn to return.
	Go(fn func(ctx context.Context))
}

// Trailpack is a plugin of a trails application.
type Trailpack interface {
	// Pkg identifies the trailpack. Name must be non-empty and unique
	// within an application.
	Pkg() Pkg

	// DefaultConfig is merged into the application configuration before
	// Configure. Values the application already set are never replaced.
	DefaultConfig() map[string]any

	Validate(ctx context.Context, app App) error
	Configure(ctx context.Context, app App) error
	Initialize(ctx context.Context, app App) error
	Unload(ctx context.Context, app App) error
}

// Factory creates a fresh trailpack for one application instance.
type Factory func() Trailpack

// Base provides no-op phases. Embed it and override what you need.
type Base struct {
	Package  Pkg
	Defaults map[string]any
}

func (b Base) Pkg() Pkg                                    { return b.Package }
func (b Base) DefaultConfig() map[string]any               { return b.Defaults }
func (Base) Validate(ctx context.Context, app App) error   { return nil }
func (Base) Configure(ctx context.Context, app App) error  { return nil }
func (Base) Initialize(ctx context.Context, app App) error { return nil }
func (Base) Unload(ctx context.Context, app App) error     { return nil }

var _ Trailpack = Base{}

package trails

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/bft-labs/trails/internal/domain"
	"github.com/bft-labs/trails/internal/paths"
	"github.com/bft-labs/trails/internal/registry"
	"github.com/bft-labs/trails/pkg/config"
	"github.com/bft-labs/trails/pkg/env"
	"github.com/bft-labs/trails/pkg/event"
	"github.com/bft-labs/trails/pkg/lifecycle"
	"github.com/bft-labs/trails/pkg/log"
	"github.com/bft-labs/trails/pkg/trailpack"
)

// Engine events emitted on the App's bus.
const (
	EventStart          = "trails:start"
	EventAllValidated   = "trailpack:all:validated"
	EventAllConfigured  = "trailpack:all:configured"
	EventAllInitialized = "trailpack:all:initialized"
	EventReady          = "trails:ready"
	EventStop           = "trails:stop"
	EventStopped        = "trails:stopped"
	EventError          = "trails:error"
)

// Definition describes an application: its package metadata, its API
// object and its initial configuration tree.
type Definition struct {
	Pkg    *trailpack.Pkg
	API    map[string]any
	Config map[string]any
}

// App is one application instance. Instances share nothing; many may run
// in one process.
type App struct {
	id       string
	pkg      trailpack.Pkg
	api      map[string]any
	store    *config.Store
	env      env.Snapshot
	bus      *event.Bus
	syncer   *event.Synchronizer
	registry *registry.Registry
	state    *lifecycle.Manager
	fs       afero.Fs
	logger   log.Logger
	opts     options

	mu sync.Mutex
}

// New builds an App from def. Trailpacks are resolved and registered here;
// nothing runs until Start.
func New(def *Definition, opts ...Option) (*App, error) {
	if def == nil {
		return nil, ErrMissingDefinition
	}
	if def.Pkg == nil {
		return nil, ErrPackageNotDefined
	}
	if def.API == nil {
		return nil, ErrAPINotDefined
	}

	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	envOpts := []env.Option{env.WithDefault(env.ModeKey, env.DefaultMode)}
	if o.mode != "" {
		envOpts = append(envOpts, env.WithOverride(env.ModeKey, o.mode))
	}
	var snapshot env.Snapshot
	if o.environ != nil {
		snapshot = env.New(o.environ, envOpts...)
	} else {
		snapshot = env.Capture(envOpts...)
	}

	id := uuid.NewString()
	logger := o.logger.With(log.String("app", def.Pkg.Name), log.String("instance", id))

	workDir := o.workDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		workDir = wd
	}

	store := config.New(def.Config)
	if err := paths.Defaults(store, workDir); err != nil {
		return nil, fmt.Errorf("default paths: %w", err)
	}

	packs, err := resolvePacks(store.Get(PacksKey), o.catalog)
	if err != nil {
		return nil, err
	}
	reg := registry.New(logger)
	if err := reg.Register(packs...); err != nil {
		return nil, err
	}

	bus := event.NewBus(event.WithMaxListeners(o.maxListeners), event.WithBusLogger(logger))

	a := &App{
		id:       id,
		pkg:      *def.Pkg,
		api:      def.API,
		store:    store,
		env:      snapshot,
		bus:      bus,
		syncer:   event.NewSynchronizer(bus),
		registry: reg,
		state:    lifecycle.NewManager(logger, stateObserver{handler: o.eventHandler}),
		fs:       o.fs,
		logger:   logger,
		opts:     o,
	}
	logger.Debug("application created",
		log.String("mode", snapshot.Mode()),
		log.Strings("trailpacks", reg.Names()),
	)
	return a, nil
}

// Start creates the configured directories, runs every trailpack's
// Validate and Configure, freezes the configuration, then runs Initialize
// and returns once the App is running. On failure the App is left crashed;
// call Stop to unload whatever was configured.
//
// ctx bounds the start sequence only. Background work started with Go
// lives until Stop.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.state.CanStart() {
		if a.state.State() == lifecycle.StateRunning {
			return ErrAlreadyRunning
		}
		return ErrAlreadyStarted
	}

	if err := a.state.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
		return err
	}
	a.logger.Info("application starting")
	a.bus.Emit(EventStart)

	if err := paths.Ensure(a.fs, a.store, a.logger); err != nil {
		return a.crash(err)
	}

	if err := a.registry.ValidateAll(ctx, a); err != nil {
		return a.crash(err)
	}
	a.bus.Emit(EventAllValidated)

	if err := a.registry.ConfigureAll(ctx, a); err != nil {
		return a.crash(err)
	}
	a.store.Freeze()
	a.bus.Emit(EventAllConfigured)

	if err := a.registry.InitializeAll(ctx, a); err != nil {
		return a.crash(err)
	}
	a.bus.Emit(EventAllInitialized)

	if err := a.state.TransitionTo(lifecycle.StateRunning, "trailpacks initialized"); err != nil {
		return a.crash(err)
	}
	a.logger.Info("application ready")
	a.bus.Emit(EventReady, a)
	return nil
}

func (a *App) crash(err error) error {
	a.logger.Error("application failed to start", log.Err(err))
	a.bus.Emit(EventError, err)
	_ = a.state.TransitionTo(lifecycle.StateCrashed, err.Error())
	return err
}

// Stop unloads the trailpacks in reverse order and releases the App's
// listeners. Stop on an App that never started or already stopped does
// nothing. A crashed App can be stopped.
//
// Stop waits up to the shutdown timeout for workers started with Go and
// returns ErrShutdownTimeout if they outlive it; trailpacks are unloaded
// either way. Unload failures are joined into the returned error.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.state.CanStop() {
		return nil
	}
	if err := a.state.TransitionTo(lifecycle.StateStopping, "Stop() called"); err != nil {
		return err
	}
	a.logger.Info("application stopping")
	a.bus.Emit(EventStop)

	a.state.Cancel()
	waitErr := a.state.Wait(a.opts.shutdownTimeout)
	if waitErr != nil {
		waitErr = fmt.Errorf("%w: %w", domain.ErrShutdownTimeout, waitErr)
	}

	teardownErr := a.registry.TeardownAll(ctx, a)
	a.bus.Emit(EventStopped)
	a.syncer.Close()
	a.bus.Clear()

	err := errors.Join(waitErr, teardownErr)
	if waitErr != nil {
		_ = a.state.TransitionTo(lifecycle.StateCrashed, "shutdown timeout")
	} else {
		_ = a.state.TransitionTo(lifecycle.StateStopped, "graceful shutdown")
	}
	if err != nil {
		a.logger.Error("application stopped with errors", log.Err(err))
		return err
	}
	a.logger.Info("application stopped")
	return nil
}

// After returns a future resolved once every term of expr has fired.
// See event.Parse for the accepted forms.
func (a *App) After(expr any) *event.Future {
	return a.syncer.After(expr)
}

// OnceAny returns a future resolved by the first of names to fire.
func (a *App) OnceAny(names ...string) *event.Future {
	return a.syncer.OnceAny(names...)
}

// Emit publishes an event on the App's bus and reports whether it had listeners.
func (a *App) Emit(name string, args ...any) bool {
	return a.bus.Emit(name, args...)
}

// On subscribes handler to name and returns an id for Off.
func (a *App) On(name string, handler event.Handler) uint64 {
	return a.bus.Subscribe(name, handler)
}

// Off removes the subscription with id.
func (a *App) Off(id uint64) bool {
	return a.bus.Unsubscribe(id)
}

// ListenerCount returns the number of listeners on name.
func (a *App) ListenerCount(name string) int {
	return a.bus.ListenerCount(name)
}

// Go runs fn in the background. fn's context is cancelled when Stop
// begins, and Stop waits for fn to return.
func (a *App) Go(fn func(ctx context.Context)) {
	a.state.Go(fn)
}

// Config returns the App's configuration store. It is the same store for
// the App's whole life; it becomes read-only once Start configured the
// trailpacks.
func (a *App) Config() *config.Store { return a.store }

// Env returns the environment captured when the App was built.
func (a *App) Env() env.Snapshot { return a.env }

// Mode returns TRAILS_ENV from the App's snapshot.
func (a *App) Mode() string { return a.env.Mode() }

// ID returns the instance id assigned by New.
func (a *App) ID() string { return a.id }

// Pkg returns the application's package metadata.
func (a *App) Pkg() trailpack.Pkg { return a.pkg }

// API returns the API object of the definition.
func (a *App) API() map[string]any { return a.api }

// Logger returns the App's logger, scoped with its name and instance id.
func (a *App) Logger() log.Logger { return a.logger }

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (a *App) Status() State { return a.state.State() }

// MaxListeners returns the per-event listener count above which the bus
// warns about a possible leak.
func (a *App) MaxListeners() int { return a.bus.MaxListeners() }

// Plugins returns the trailpack names in registration order.
func (a *App) Plugins() []string {
	return a.registry.Names()
}

// PluginState reports the lifecycle state of the named trailpack.
func (a *App) PluginState(name string) (PluginState, bool) {
	return a.registry.State(name)
}

var _ trailpack.App = (*App)(nil)

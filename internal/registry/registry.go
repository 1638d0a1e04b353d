// Package registry holds the ordered set of trailpacks of one application
// and drives them through their phases.
package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/bft-labs/trails/internal/domain"
	"github.com/bft-labs/trails/pkg/log"
	"github.com/bft-labs/trails/pkg/trailpack"
)

// State is the lifecycle state of a single trailpack.
type State int

const (
	StateUnregistered State = iota
	StateValidated
	StateConfigured
	StateInitialized
	StateTeardown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateValidated:
		return "validated"
	case StateConfigured:
		return "configured"
	case StateInitialized:
		return "initialized"
	case StateTeardown:
		return "teardown"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type entry struct {
	name   string
	pack   trailpack.Trailpack
	state  State
	logger log.Logger
}

// Registry is the ordered plugin list of one application.
// Registration order is configure order; teardown runs in reverse.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	byName  map[string]*entry
	logger  log.Logger
}

// New creates an empty registry.
func New(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Registry{
		byName: make(map[string]*entry),
		logger: logger,
	}
}

// Register appends packs in order. Either every pack is accepted or none is.
func (r *Registry) Register(packs ...trailpack.Trailpack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(packs))
	added := make([]*entry, 0, len(packs))
	for i, p := range packs {
		index := len(r.entries) + i
		if isNil(p) {
			return &domain.PluginValidationError{Index: index, Reason: "trailpack is nil"}
		}
		name := p.Pkg().Name
		if name == "" {
			return &domain.PluginValidationError{Index: index, Reason: "pkg.name is empty"}
		}
		if _, dup := r.byName[name]; dup || seen[name] {
			return &domain.PluginValidationError{Index: index, Name: name, Reason: "duplicate trailpack name"}
		}
		seen[name] = true
		added = append(added, &entry{
			name:   name,
			pack:   p,
			logger: r.logger.With(log.String("trailpack", name)),
		})
	}

	for _, e := range added {
		r.entries = append(r.entries, e)
		r.byName[e.name] = e
		r.logger.Debug("trailpack registered", log.String("trailpack", e.name))
	}
	return nil
}

// isNil also catches typed nils, such as a nil *myPack held in the interface.
func isNil(p trailpack.Trailpack) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered trailpacks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Get returns the trailpack registered under name.
func (r *Registry) Get(name string) (trailpack.Trailpack, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return e.pack, true
}

// State reports the lifecycle state of name.
func (r *Registry) State(name string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return StateUnregistered, false
	}
	return e.state, true
}

// ValidateAll runs every trailpack's Validate in registration order and
// stops at the first failure.
func (r *Registry) ValidateAll(ctx context.Context, app trailpack.App) error {
	for _, e := range r.snapshot() {
		if err := call(e, domain.PhaseValidate, func() error {
			return e.pack.Validate(ctx, scope(app, e))
		}); err != nil {
			return err
		}
		r.setState(e, StateValidated)
	}
	return nil
}

// ConfigureAll merges each trailpack's defaults into the application
// configuration and runs its Configure, strictly in registration order.
// "<name>:configured" is emitted after each trailpack.
func (r *Registry) ConfigureAll(ctx context.Context, app trailpack.App) error {
	for _, e := range r.snapshot() {
		if defaults := e.pack.DefaultConfig(); len(defaults) > 0 {
			if err := app.Config().Merge(defaults); err != nil {
				return &domain.PluginLifecycleError{Plugin: e.name, Phase: domain.PhaseConfigure, Err: err}
			}
		}
		if err := call(e, domain.PhaseConfigure, func() error {
			return e.pack.Configure(ctx, scope(app, e))
		}); err != nil {
			return err
		}
		r.setState(e, StateConfigured)
		e.logger.Debug("trailpack configured")
		app.Emit(e.name + ":configured")
	}
	return nil
}

// InitializeAll starts every trailpack's Initialize on its own goroutine,
// in registration order, and waits for all of them. Trailpacks may block
// on futures for each other's events. The first failure cancels the
// context handed to the others and is returned.
func (r *Registry) InitializeAll(ctx context.Context, app trailpack.App) error {
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, e := range r.snapshot() {
		e := e
		p.Go(func(ctx context.Context) error {
			if err := call(e, domain.PhaseInitialize, func() error {
				return e.pack.Initialize(ctx, scope(app, e))
			}); err != nil {
				return err
			}
			r.setState(e, StateInitialized)
			e.logger.Debug("trailpack initialized")
			app.Emit(e.name + ":initialized")
			return nil
		})
	}
	return p.Wait()
}

// TeardownAll runs Unload in reverse registration order for every
// trailpack that reached the configured state. It keeps going past
// failures and returns them joined.
func (r *Registry) TeardownAll(ctx context.Context, app trailpack.App) error {
	entries := r.snapshot()
	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		r.mu.RLock()
		st := e.state
		r.mu.RUnlock()
		if st != StateConfigured && st != StateInitialized {
			continue
		}

		r.setState(e, StateTeardown)
		if err := call(e, domain.PhaseUnload, func() error {
			return e.pack.Unload(ctx, scope(app, e))
		}); err != nil {
			e.logger.Error("trailpack unload failed", log.Err(err))
			errs = append(errs, err)
		} else {
			e.logger.Debug("trailpack unloaded")
		}
		r.setState(e, StateStopped)
	}
	return errors.Join(errs...)
}

func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) setState(e *entry, s State) {
	r.mu.Lock()
	e.state = s
	r.mu.Unlock()
}

// call runs one phase and turns errors and panics into PluginLifecycleError.
func call(e *entry, phase domain.Phase, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &domain.PluginLifecycleError{Plugin: e.name, Phase: phase, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	if err := fn(); err != nil {
		return &domain.PluginLifecycleError{Plugin: e.name, Phase: phase, Err: err}
	}
	return nil
}

// scopedApp hands each trailpack a logger tagged with its name.
type scopedApp struct {
	trailpack.App
	logger log.Logger
}

func (s scopedApp) Logger() log.Logger { return s.logger }

func scope(app trailpack.App, e *entry) trailpack.App {
	return scopedApp{App: app, logger: app.Logger().With(log.String("trailpack", e.name))}
}

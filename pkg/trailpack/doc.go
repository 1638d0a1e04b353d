// Package trailpack defines what a plugin of a trails application is.
//
// A trailpack is any value implementing Trailpack. It names itself through
// Pkg, offers default configuration through DefaultConfig, and takes part
// in four phases run by the engine:
//
//	Validate   - check the application's configuration, in registration order
//	Configure  - adjust configuration, in registration order; defaults are
//	             merged just before this call
//	Initialize - acquire resources; every trailpack's Initialize runs
//	             concurrently, started in registration order
//	Unload     - release resources, in reverse registration order
//
// Embed Base to get no-op phases and implement only what you need.
//
// # Waiting on other trailpacks
//
// When a trailpack's Initialize completes the engine emits
// "<name>:initialized". To depend on another trailpack, register the wait
// during Configure, which runs before any Initialize, and block on it in
// Initialize:
//
//	func (p *Router) Configure(ctx context.Context, app trailpack.App) error {
//	    p.deps = app.After([]string{"db:initialized", "cache:initialized"})
//	    return nil
//	}
//
//	func (p *Router) Initialize(ctx context.Context, app trailpack.App) error {
//	    if _, err := p.deps.Wait(ctx); err != nil {
//	        return err
//	    }
//	    return p.mount(app)
//	}
//
// Registering inside Initialize also works but misses any event emitted
// before the registration.
package trailpack

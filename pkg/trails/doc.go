// Package trails boots an application out of ordered plugins called
// trailpacks.
//
// An App is built from a Definition (package metadata, an API object and a
// configuration tree). main.packs in the configuration lists the
// trailpacks in order:
//
//	app, err := trails.New(&trails.Definition{
//	    Pkg: &trailpack.Pkg{Name: "shop"},
//	    API: map[string]any{},
//	    Config: map[string]any{
//	        "main": map[string]any{
//	            "packs": []trailpack.Factory{db.New, router.New},
//	        },
//	    },
//	})
//
// Start runs every trailpack through its phases:
//
//  1. directories under main.paths are created
//  2. Validate, in order
//  3. defaults merged, then Configure, in order; the configuration is then frozen
//  4. Initialize, concurrently; trailpacks may wait on each other's events
//
// Stop unloads the trailpacks in reverse order.
//
// # Events
//
// Each App owns an event bus. The engine emits trails:start,
// trailpack:all:validated, trailpack:all:configured,
// trailpack:all:initialized, trails:ready, trails:stop, trails:stopped and
// trails:error, plus "<name>:configured" and "<name>:initialized" for each
// trailpack. After and OnceAny turn event combinations into futures:
//
//	app.After([]string{"db:initialized", "cache:initialized"})  // both
//	app.After([]any{[]string{"a", "b"}, "c"})                    // (a or b) and c
//	app.OnceAny("ok", "failed")                                  // whichever first
//
// # Environment
//
// The process environment is captured once when the App is built.
// TRAILS_ENV selects the mode and defaults to "development"; WithMode
// overrides it for one App without touching the process.
package trails

// Package event provides the per-application event bus and the
// synchronizer that turns combinations of events into futures.
//
// # Bus
//
// A Bus is a synchronous publish/subscribe hub. Handlers run on the emitting
// goroutine in registration order. Every application owns its own Bus;
// nothing here is global.
//
// # Synchronizer
//
// A Synchronizer resolves a Future once an event expression is satisfied.
// An expression is a conjunction of terms and each term is a disjunction of
// event names:
//
//	sync.After("router:initialized")                        // one required event
//	sync.After([]string{"db:initialized", "cache:initialized"}) // both
//	sync.After([]any{[]string{"a", "b"}, "c"})               // (a or b) and c
//	sync.OnceAny("shutdown", "crash")                         // first of either
//
// The future resolves with one payload per term, in the order the terms were
// written. A payload is the first argument passed to Emit, or nil.
//
// Each request owns its bus registrations. When the first event of a term
// fires, the remaining registrations of that term are dropped; when the
// request settles (satisfied or cancelled) every registration is dropped.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package event

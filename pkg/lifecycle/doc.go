// Package lifecycle provides the state machine that guards an application
// instance's Start and Stop calls, the goroutines it runs in the
// background, and a jittered backoff for retry loops.
//
// # Usage
//
//	manager := lifecycle.NewManager(logger, observer)
//
//	if err := manager.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
//	    return err
//	}
//	manager.Go(func(ctx context.Context) {
//	    <-ctx.Done()
//	})
//
//	manager.Cancel()
//	if err := manager.Wait(lifecycle.ShutdownTimeout); err != nil {
//	    return err
//	}
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Stopping
//
// An instance starts once. After it left Stopped, CanStart stays false.
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
//
// See version.go for version constants that can be used programmatically.
package lifecycle

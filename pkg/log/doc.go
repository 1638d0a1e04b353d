// Package log provides the logging port used by the trails engine,
// its registry and every trailpack.
//
// The engine never talks to a logging library directly. It depends on the
// Logger interface below, and the host picks an implementation: the zerolog
// adapter for real output, or the no-op logger (the default) for silence.
//
// # Usage
//
//	logger := log.NewZerologAdapter()
//	app, err := trails.New(def, trails.WithLogger(logger))
//
// Loggers are scoped with With. The engine scopes its logger with the
// application name and instance id, and every trailpack receives a child
// scoped with its own name:
//
//	packLog := logger.With(log.String("trailpack", "router"))
//	packLog.Info("routes mounted", log.Int("count", 12))
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
package log

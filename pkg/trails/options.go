package trails

import (
	"maps"
	"time"

	"github.com/spf13/afero"

	"github.com/bft-labs/trails/pkg/event"
	"github.com/bft-labs/trails/pkg/lifecycle"
	"github.com/bft-labs/trails/pkg/log"
	"github.com/bft-labs/trails/pkg/trailpack"
)

// Option configures optional behavior of an App.
type Option func(*options)

type options struct {
	logger          log.Logger
	environ         []string
	mode            string
	catalog         trailpack.Catalog
	fs              afero.Fs
	workDir         string
	maxListeners    int
	shutdownTimeout time.Duration
	eventHandler    EventHandler
}

func defaultOptions() options {
	return options{
		logger:          log.NoopLogger{},
		catalog:         trailpack.Catalog{},
		fs:              afero.NewOsFs(),
		maxListeners:    event.DefaultMaxListeners,
		shutdownTimeout: lifecycle.ShutdownTimeout,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEnviron builds the environment snapshot from environ ("KEY=value"
// entries) instead of the process environment.
func WithEnviron(environ []string) Option {
	return func(o *options) {
		o.environ = append([]string{}, environ...)
	}
}

// WithMode sets TRAILS_ENV in the App's snapshot, overriding the
// environment. The process environment is never modified.
func WithMode(mode string) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithCatalog adds named trailpack factories used to resolve string
// entries of main.packs. Later catalogs override earlier names.
func WithCatalog(catalog trailpack.Catalog) Option {
	return func(o *options) {
		maps.Copy(o.catalog, catalog)
	}
}

// WithFs sets the filesystem used to create configured directories.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithWorkingDir sets the directory that main.paths.root defaults to and
// that relative roots resolve against. Defaults to the process working
// directory.
func WithWorkingDir(dir string) Option {
	return func(o *options) {
		o.workDir = dir
	}
}

// WithMaxListeners sets the per-event listener count above which the bus
// logs a possible-leak warning. Defaults to 128.
func WithMaxListeners(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxListeners = n
		}
	}
}

// WithShutdownTimeout bounds how long Stop waits for background workers
// started with Go.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithEventHandler sets a handler notified of engine state changes.
// It is called synchronously from Start and Stop.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// Package configwatcher is a trailpack that watches configuration files
// and reports their changes on the application's event bus.
//
// Files are listed under configwatcher.files. When one is written or
// (re)created the plugin waits for the debounce delay, parses it with
// config.LoadFile and emits "configwatcher:changed" with a Change. Files
// that fail to parse are reported with "configwatcher:error".
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/trails/pkg/config"
	"github.com/bft-labs/trails/pkg/lifecycle"
	"github.com/bft-labs/trails/pkg/log"
	"github.com/bft-labs/trails/pkg/trailpack"
)

// Name is the trailpack name and configuration key.
const Name = "configwatcher"

// Events emitted by the plugin.
const (
	EventReady   = Name + ":ready"
	EventChanged = Name + ":changed"
	EventError   = Name + ":error"
)

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Files to watch. Relative paths resolve against main.paths.root.
	Files []string `config:"files"`

	// DebounceDelay is the delay to wait after a file change before reading it.
	// Default: 100 milliseconds
	DebounceDelay time.Duration `config:"debounce"`

	// RetryInterval is the first delay between attempts to watch a
	// directory that does not exist yet. It doubles up to RetryMax.
	// Default: 5 seconds
	RetryInterval time.Duration `config:"retry"`

	// RetryMax caps the retry delay.
	// Default: 1 minute
	RetryMax time.Duration `config:"retry_max"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
		RetryInterval: 5 * time.Second,
		RetryMax:      time.Minute,
	}
}

// Change is the payload of EventChanged and EventError.
type Change struct {
	Path   string
	Config map[string]any
	Err    error
}

// Plugin implements config watching functionality.
type Plugin struct {
	trailpack.Base

	mu       sync.Mutex
	cfg      Config
	files    map[string]string // absolute path -> watched directory
	logger   log.Logger
	emit     func(name string, args ...any) bool
	debounce map[string]*time.Timer
}

// New creates a new config watcher plugin.
func New() *Plugin {
	d := DefaultConfig()
	return &Plugin{
		Base: trailpack.Base{
			Package: trailpack.Pkg{
				Name:        Name,
				Version:     Version,
				Description: "watches configuration files and emits change events",
			},
			Defaults: map[string]any{
				Name: map[string]any{
					"files":     []string{},
					"debounce":  d.DebounceDelay.String(),
					"retry":     d.RetryInterval.String(),
					"retry_max": d.RetryMax.String(),
				},
			},
		},
		logger:   log.NoopLogger{},
		debounce: make(map[string]*time.Timer),
	}
}

// Validate rejects a files entry that is not a list of paths.
func (p *Plugin) Validate(ctx context.Context, app trailpack.App) error {
	v, ok := app.Config().Lookup(Name + ".files")
	if !ok || v == nil {
		return nil
	}
	var files []string
	if err := config.Decode(v, &files); err != nil {
		return fmt.Errorf("%s.files: %w", Name, err)
	}
	for i, f := range files {
		if f == "" {
			return fmt.Errorf("%s.files[%d] is empty", Name, i)
		}
	}
	return nil
}

// Configure reads the plugin settings.
func (p *Plugin) Configure(ctx context.Context, app trailpack.App) error {
	cfg := DefaultConfig()
	if err := app.Config().Decode(Name, &cfg); err != nil {
		return fmt.Errorf("decode %s config: %w", Name, err)
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultConfig().DebounceDelay
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultConfig().RetryInterval
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = DefaultConfig().RetryMax
	}

	root := app.Config().GetString("main.paths.root")
	files := make(map[string]string, len(cfg.Files))
	for _, f := range cfg.Files {
		if !filepath.IsAbs(f) && root != "" {
			f = filepath.Join(root, f)
		}
		f = filepath.Clean(f)
		files[f] = filepath.Dir(f)
	}

	p.mu.Lock()
	p.cfg = cfg
	p.files = files
	p.logger = app.Logger()
	p.emit = app.Emit
	p.mu.Unlock()
	return nil
}

// Initialize starts the watcher loop as a background worker of app.
func (p *Plugin) Initialize(ctx context.Context, app trailpack.App) error {
	if len(p.files) == 0 {
		p.logger.Info("config watcher idle: no files configured")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	app.Go(func(ctx context.Context) {
		defer watcher.Close()
		p.watchLoop(ctx, watcher)
	})
	return nil
}

// Unload stops pending debounced reads.
func (p *Plugin) Unload(ctx context.Context, app trailpack.App) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for path, t := range p.debounce {
		t.Stop()
		delete(p.debounce, path)
	}
	return nil
}

// watchLoop watches the directories of the configured files until ctx ends.
// Directories that do not exist yet are retried with backoff.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	pending := p.addDirs(watcher, p.dirs())
	if len(pending) == 0 {
		p.emit(EventReady)
	}

	backoff := lifecycle.NewBackoff(p.cfg.RetryInterval, p.cfg.RetryMax)
	retry := time.NewTimer(backoff.Next())
	defer retry.Stop()
	if len(pending) == 0 {
		retry.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-retry.C:
			pending = p.addDirs(watcher, pending)
			if len(pending) > 0 {
				retry.Reset(backoff.Next())
				continue
			}
			p.logger.Info("config watcher: all directories watched")
			p.emit(EventReady)

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path := filepath.Clean(ev.Name)
			if _, watched := p.files[path]; !watched {
				continue
			}
			p.debounceRead(ctx, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

// addDirs watches dirs and returns the ones that could not be watched yet.
func (p *Plugin) addDirs(watcher *fsnotify.Watcher, dirs []string) []string {
	var pending []string
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			p.logger.Warn("config watcher: cannot watch directory yet",
				log.String("dir", dir), log.Err(err))
			pending = append(pending, dir)
			continue
		}
		p.logger.Debug("config watcher: watching directory", log.String("dir", dir))
	}
	return pending
}

func (p *Plugin) dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range p.files {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (p *Plugin) debounceRead(ctx context.Context, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.debounce[path]; ok {
		t.Stop()
	}
	p.debounce[path] = time.AfterFunc(p.cfg.DebounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.read(path)
	})
}

// read parses path and reports the result on the bus.
func (p *Plugin) read(path string) {
	tree, err := config.LoadFile(path)
	if err != nil {
		if errors.Is(err, config.ErrUnsupportedFormat) {
			// Not a config format: report the change without content.
			p.logger.Info("config file changed", log.String("path", path))
			p.emit(EventChanged, Change{Path: path})
			return
		}
		p.logger.Warn("config file unreadable", log.String("path", path), log.Err(err))
		p.emit(EventError, Change{Path: path, Err: err})
		return
	}
	p.logger.Info("config file changed", log.String("path", path))
	p.emit(EventChanged, Change{Path: path, Config: tree})
}

var _ trailpack.Trailpack = (*Plugin)(nil)

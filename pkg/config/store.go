package config

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

var (
	// ErrFrozen is returned by every write on a frozen store.
	ErrFrozen = errors.New("config: store is frozen")

	// ErrPathNotFound is returned by Require when nothing is stored at a path.
	ErrPathNotFound = errors.New("config: path not found")

	// ErrInvalidPath is returned for empty paths or paths with empty segments.
	ErrInvalidPath = errors.New("config: invalid path")
)

// Store is a dotted-path configuration tree with a one-way freeze.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tree   map[string]any
	frozen atomic.Bool
}

// New creates a mutable store seeded with a deep copy of tree.
func New(tree map[string]any) *Store {
	seed, _ := normalize(tree).(map[string]any)
	if seed == nil {
		seed = make(map[string]any)
	}
	return &Store{tree: seed}
}

// Get returns the value at path, or nil when absent.
func (s *Store) Get(path string) any {
	v, _ := s.Lookup(path)
	return v
}

// Lookup returns the value at path and whether it exists.
// Maps and slices are returned as copies.
func (s *Store) Lookup(path string) (any, bool) {
	keys, err := splitPath(path)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := lookup(s.tree, keys)
	if !ok {
		return nil, false
	}
	return normalize(v), true
}

// Require returns the value at path or an error wrapping ErrPathNotFound.
func (s *Store) Require(path string) (any, error) {
	v, ok := s.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return v, nil
}

// Has reports whether a value exists at path.
func (s *Store) Has(path string) bool {
	_, ok := s.Lookup(path)
	return ok
}

// Set stores value at path.
func (s *Store) Set(path string, value any) error {
	keys, err := splitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen.Load() {
		return fmt.Errorf("%w: set %s", ErrFrozen, path)
	}
	assign(s.tree, keys, normalize(value))
	return nil
}

// SetDefault stores value at path only when nothing is there yet.
// It reports whether the value was stored.
func (s *Store) SetDefault(path string, value any) (bool, error) {
	keys, err := splitPath(path)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen.Load() {
		return false, fmt.Errorf("%w: set default %s", ErrFrozen, path)
	}
	if _, ok := lookup(s.tree, keys); ok {
		return false, nil
	}
	assign(s.tree, keys, normalize(value))
	return true, nil
}

// Merge deep-merges defaults into the tree. Values already present win;
// defaults only fill the gaps. Slices are never combined.
func (s *Store) Merge(defaults map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen.Load() {
		return fmt.Errorf("%w: merge", ErrFrozen)
	}
	mergeDefaults(s.tree, defaults)
	return nil
}

// Freeze makes the store read-only. Calling it again has no effect.
func (s *Store) Freeze() {
	s.mu.Lock()
	s.frozen.Store(true)
	s.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (s *Store) Frozen() bool {
	return s.frozen.Load()
}

// All returns a deep copy of the whole tree.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return normalize(s.tree).(map[string]any)
}

// GetString returns the value at path converted to a string, or "".
func (s *Store) GetString(path string) string {
	return cast.ToString(s.Get(path))
}

// GetInt returns the value at path converted to an int, or 0.
func (s *Store) GetInt(path string) int {
	return cast.ToInt(s.Get(path))
}

// GetBool returns the value at path converted to a bool, or false.
func (s *Store) GetBool(path string) bool {
	return cast.ToBool(s.Get(path))
}

// GetDuration returns the value at path converted to a duration.
// Strings use time.ParseDuration syntax; bare numbers are nanoseconds.
func (s *Store) GetDuration(path string) time.Duration {
	return cast.ToDuration(s.Get(path))
}

// GetStringSlice returns the value at path converted to a string slice.
func (s *Store) GetStringSlice(path string) []string {
	return cast.ToStringSlice(s.Get(path))
}

// GetStringMap returns the map at path, or an empty map.
func (s *Store) GetStringMap(path string) map[string]any {
	return cast.ToStringMap(s.Get(path))
}

// Decode copies the subtree at path into out, a pointer to a struct or map.
// Struct fields are matched through the "config" tag, falling back to a
// case-insensitive field name match. A missing path leaves out untouched.
func (s *Store) Decode(path string, out any) error {
	v, ok := s.Lookup(path)
	if !ok {
		return nil
	}
	return Decode(v, out)
}

// Decode copies an arbitrary config value into out using the same rules as Store.Decode.
func Decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "config",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("config: build decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}

// Package env captures the process environment once, into an immutable
// snapshot owned by a single application instance.
//
// Later changes to the process environment are never observed through a
// Snapshot, and nothing handed out by a Snapshot can write back into it.
package env

import (
	"os"
	"sort"
	"strings"
)

// ModeKey is the variable holding the application's environment mode.
const ModeKey = "TRAILS_ENV"

// DefaultMode is the mode recorded when ModeKey is not set externally.
const DefaultMode = "development"

// Snapshot is an immutable view of environment variables captured at one instant.
// The zero value is an empty snapshot.
type Snapshot struct {
	vars map[string]string
}

// Option adjusts a snapshot while it is being captured.
type Option func(map[string]string)

// WithDefault records value under key when the captured environment lacks it.
func WithDefault(key, value string) Option {
	return func(vars map[string]string) {
		if _, ok := vars[key]; !ok {
			vars[key] = value
		}
	}
}

// WithOverride records value under key regardless of the captured environment.
func WithOverride(key, value string) Option {
	return func(vars map[string]string) {
		vars[key] = value
	}
}

// Capture snapshots os.Environ.
func Capture(opts ...Option) Snapshot {
	return New(os.Environ(), opts...)
}

// New builds a snapshot from KEY=VALUE pairs in the format of os.Environ.
// Entries without '=' are ignored; on duplicate keys the last one wins.
func New(environ []string, opts ...Option) Snapshot {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	for _, opt := range opts {
		opt(vars)
	}
	return Snapshot{vars: vars}
}

// Get returns the captured value of key, or "" when absent.
func (s Snapshot) Get(key string) string {
	return s.vars[key]
}

// Lookup returns the captured value of key and whether it was present.
func (s Snapshot) Lookup(key string) (string, bool) {
	v, ok := s.vars[key]
	return v, ok
}

// Mode returns the captured environment mode.
func (s Snapshot) Mode() string {
	return s.vars[ModeKey]
}

// Map returns a fresh copy of the captured variables.
// Writes to the returned map are not visible through the snapshot.
func (s Snapshot) Map() map[string]string {
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// Keys returns the captured variable names in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.vars))
	for k := range s.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of captured variables.
func (s Snapshot) Len() int {
	return len(s.vars)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDefinition is returned when no application definition is given.
	ErrMissingDefinition = errors.New("trails: missing application definition")

	// ErrPackageNotDefined is returned when the definition has no pkg.
	ErrPackageNotDefined = errors.New("trails: application pkg is not defined")

	// ErrAPINotDefined is returned when the definition has no api.
	ErrAPINotDefined = errors.New("trails: application api is not defined")

	// ErrTrailpack matches every PluginValidationError.
	ErrTrailpack = errors.New("trails: invalid trailpack")

	// ErrAlreadyRunning is returned when Start is called while starting or running.
	ErrAlreadyRunning = errors.New("trails: already running")

	// ErrAlreadyStarted is returned when Start is called on an application that has already run.
	ErrAlreadyStarted = errors.New("trails: application instances cannot be restarted")

	// ErrShutdownTimeout is returned when background workers outlive the shutdown timeout.
	ErrShutdownTimeout = errors.New("trails: shutdown timeout")
)

// PluginValidationError reports a plugin rejected at registration.
type PluginValidationError struct {
	Index  int
	Name   string
	Reason string
}

func (e *PluginValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("trails: trailpack #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("trails: trailpack #%d (%s): %s", e.Index, e.Name, e.Reason)
}

func (e *PluginValidationError) Is(target error) bool {
	return target == ErrTrailpack
}

// Phase names a plugin lifecycle phase.
type Phase string

const (
	PhaseValidate   Phase = "validate"
	PhaseConfigure  Phase = "configure"
	PhaseInitialize Phase = "initialize"
	PhaseUnload     Phase = "unload"
)

// PluginLifecycleError wraps an error returned by a plugin phase.
type PluginLifecycleError struct {
	Plugin string
	Phase  Phase
	Err    error
}

func (e *PluginLifecycleError) Error() string {
	return fmt.Sprintf("trails: trailpack %s: %s: %v", e.Plugin, e.Phase, e.Err)
}

func (e *PluginLifecycleError) Unwrap() error {
	return e.Err
}

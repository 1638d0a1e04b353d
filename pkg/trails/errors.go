package trails

import (
	"github.com/bft-labs/trails/internal/domain"
	"github.com/bft-labs/trails/pkg/config"
	"github.com/bft-labs/trails/pkg/event"
)

// Errors returned by the engine. Match them with errors.Is / errors.As.
var (
	ErrMissingDefinition = domain.ErrMissingDefinition
	ErrPackageNotDefined = domain.ErrPackageNotDefined
	ErrAPINotDefined     = domain.ErrAPINotDefined
	ErrTrailpack         = domain.ErrTrailpack
	ErrAlreadyRunning    = domain.ErrAlreadyRunning
	ErrAlreadyStarted    = domain.ErrAlreadyStarted
	ErrShutdownTimeout   = domain.ErrShutdownTimeout

	// ErrFrozenConfig is returned by configuration writes after Start froze it.
	ErrFrozenConfig = config.ErrFrozen

	// ErrInvalidExpression is carried by futures built from malformed event expressions.
	ErrInvalidExpression = event.ErrInvalidExpression
)

type (
	// PluginValidationError reports a trailpack rejected while building the App.
	PluginValidationError = domain.PluginValidationError

	// PluginLifecycleError wraps an error returned by a trailpack phase.
	PluginLifecycleError = domain.PluginLifecycleError

	// Phase names a trailpack phase in a PluginLifecycleError.
	Phase = domain.Phase
)

const (
	PhaseValidate   = domain.PhaseValidate
	PhaseConfigure  = domain.PhaseConfigure
	PhaseInitialize = domain.PhaseInitialize
	PhaseUnload     = domain.PhaseUnload
)

package trails

import (
	"time"

	"github.com/bft-labs/trails/internal/registry"
	"github.com/bft-labs/trails/pkg/lifecycle"
)

// State is the engine's lifecycle state.
type State = lifecycle.State

const (
	StateStopped  = lifecycle.StateStopped
	StateStarting = lifecycle.StateStarting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateCrashed  = lifecycle.StateCrashed
)

// PluginState is the lifecycle state of one trailpack.
type PluginState = registry.State

const (
	PluginUnregistered = registry.StateUnregistered
	PluginValidated    = registry.StateValidated
	PluginConfigured   = registry.StateConfigured
	PluginInitialized  = registry.StateInitialized
	PluginTeardown     = registry.StateTeardown
	PluginStopped      = registry.StateStopped
)

// StateChangeEvent describes one engine state transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
	At       time.Time
}

// EventHandler observes engine state changes.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(event StateChangeEvent)

func (f EventHandlerFunc) OnStateChange(event StateChangeEvent) { f(event) }

type stateObserver struct {
	handler EventHandler
}

func (o stateObserver) OnTransition(t lifecycle.Transition) {
	if o.handler == nil {
		return
	}
	o.handler.OnStateChange(StateChangeEvent{
		Previous: t.From,
		Current:  t.To,
		Reason:   t.Reason,
		At:       t.At,
	})
}

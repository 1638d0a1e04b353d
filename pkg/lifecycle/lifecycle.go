package lifecycle

import (
	"slices"
	"time"
)

// State is the lifecycle state of an application instance.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

var stateNames = [...]string{
	StateStopped:  "Stopped",
	StateStarting: "Starting",
	StateRunning:  "Running",
	StateStopping: "Stopping",
	StateCrashed:  "Crashed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// successors lists the states reachable from each state. A crashed
// instance is never restarted; it can only be stopped so that whatever did
// start gets torn down.
var successors = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStopping},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to State) bool {
	return slices.Contains(successors[from], to)
}

// Transition records one state change.
type Transition struct {
	From   State
	To     State
	Reason string
	At     time.Time
}

// Observer is told about every transition, after the manager released
// its lock.
type Observer interface {
	OnTransition(t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(t Transition)

func (f ObserverFunc) OnTransition(t Transition) { f(t) }

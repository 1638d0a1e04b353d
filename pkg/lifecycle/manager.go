package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/trails/pkg/log"
)

var (
	// ErrInvalidTransition is returned by TransitionTo for a move the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("lifecycle: invalid transition")

	// ErrShutdownTimeout is returned by Wait when workers outlive the timeout.
	ErrShutdownTimeout = errors.New("lifecycle: shutdown timeout")
)

// ShutdownTimeout is the default maximum time to wait for workers during shutdown.
const ShutdownTimeout = 30 * time.Second

// Manager guards the state of one application instance and owns the
// context its background workers run under.
type Manager struct {
	mu       sync.RWMutex
	state    State
	history  []Transition
	observer Observer
	logger   log.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// NewManager creates a manager in StateStopped. observer may be nil.
func NewManager(logger log.Logger, observer Observer) *Manager {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		state:    StateStopped,
		observer: observer,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// History returns every transition made so far, oldest first.
func (m *Manager) History() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Transition(nil), m.history...)
}

// TransitionTo moves to next, or returns an error wrapping
// ErrInvalidTransition and leaves the state alone.
func (m *Manager) TransitionTo(next State, reason string) error {
	m.mu.Lock()
	prev := m.state
	if !CanTransition(prev, next) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}
	t := Transition{From: prev, To: next, Reason: reason, At: time.Now()}
	m.state = next
	m.history = append(m.history, t)
	m.mu.Unlock()

	m.logger.Debug("state transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason),
	)
	if m.observer != nil {
		m.observer.OnTransition(t)
	}
	return nil
}

// CanStart reports whether the instance has never left StateStopped.
func (m *Manager) CanStart() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateStopped && len(m.history) == 0
}

// CanStop reports whether a stop has anything to tear down.
func (m *Manager) CanStop() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateRunning || m.state == StateCrashed
}

// Context is cancelled by Cancel. Workers started with Go receive it.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Go runs fn on its own goroutine and tracks it until it returns.
func (m *Manager) Go(fn func(ctx context.Context)) {
	m.workers.Add(1)
	go func() {
		defer m.workers.Done()
		fn(m.ctx)
	}()
}

// Cancel cancels the worker context. Calling it again has no effect.
func (m *Manager) Cancel() {
	m.cancel()
}

// Wait blocks until every worker returned or timeout elapsed, whichever
// comes first. Workers still running after the timeout are abandoned.
func (m *Manager) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.workers.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		m.logger.Warn("shutdown timeout, abandoning workers", log.Duration("timeout", timeout))
		return ErrShutdownTimeout
	}
}

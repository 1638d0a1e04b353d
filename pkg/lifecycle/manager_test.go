package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/trails/pkg/log"
)

type recorder struct {
	mu  sync.Mutex
	got []Transition
}

func (r *recorder) OnTransition(t Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, t)
}

func (r *recorder) transitions() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transition(nil), r.got...)
}

// walk drives m through states, failing the test on the first refusal.
func walk(t *testing.T, m *Manager, states ...State) {
	t.Helper()
	for _, s := range states {
		require.NoError(t, m.TransitionTo(s, "walk"))
	}
}

func TestNewManager(t *testing.T) {
	m := NewManager(nil, nil)
	require.NotNil(t, m)
	assert.Equal(t, StateStopped, m.State())
	assert.Empty(t, m.History())
	assert.NoError(t, m.Context().Err())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{StateCrashed, "Crashed"},
		{State(-1), "Unknown"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestCanTransition(t *testing.T) {
	all := []State{StateStopped, StateStarting, StateRunning, StateStopping, StateCrashed}
	legal := map[[2]State]bool{
		{StateStopped, StateStarting}: true,
		{StateStarting, StateRunning}: true,
		{StateStarting, StateCrashed}: true,
		{StateRunning, StateStopping}: true,
		{StateRunning, StateCrashed}:  true,
		{StateStopping, StateStopped}: true,
		{StateStopping, StateCrashed}: true,
		{StateCrashed, StateStopping}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]State{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestManager_TransitionTo_Invalid(t *testing.T) {
	m := NewManager(log.NewNoopLogger(), nil)
	walk(t, m, StateStarting, StateRunning)

	err := m.TransitionTo(StateStarting, "again")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "Running -> Starting")
	assert.Equal(t, StateRunning, m.State(), "state must not change on invalid transition")
	assert.Len(t, m.History(), 2)
}

func TestManager_TransitionTo_NotifiesObserver(t *testing.T) {
	rec := &recorder{}
	m := NewManager(log.NewNoopLogger(), rec)

	walk(t, m, StateStarting, StateCrashed)

	got := rec.transitions()
	require.Len(t, got, 2)
	assert.Equal(t, StateStopped, got[0].From)
	assert.Equal(t, StateStarting, got[0].To)
	assert.Equal(t, StateCrashed, got[1].To)
	assert.Equal(t, "walk", got[1].Reason)
	assert.False(t, got[1].At.Before(got[0].At))
	assert.Equal(t, got, m.History())
}

func TestObserverFunc(t *testing.T) {
	var got []State
	m := NewManager(nil, ObserverFunc(func(t Transition) {
		got = append(got, t.To)
	}))

	walk(t, m, StateStarting)
	assert.Equal(t, []State{StateStarting}, got)
}

func TestManager_ObserverMayReadState(t *testing.T) {
	var m *Manager
	var seen State
	m = NewManager(nil, ObserverFunc(func(Transition) {
		seen = m.State()
	}))

	walk(t, m, StateStarting)
	assert.Equal(t, StateStarting, seen)
}

func TestManager_CanStartCanStop(t *testing.T) {
	tests := []struct {
		name      string
		path      []State
		wantStart bool
		wantStop  bool
	}{
		{"fresh", nil, true, false},
		{"starting", []State{StateStarting}, false, false},
		{"running", []State{StateStarting, StateRunning}, false, true},
		{"stopping", []State{StateStarting, StateRunning, StateStopping}, false, false},
		{"crashed", []State{StateStarting, StateCrashed}, false, true},
		{"stopped after run", []State{StateStarting, StateRunning, StateStopping, StateStopped}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil, nil)
			walk(t, m, tt.path...)
			assert.Equal(t, tt.wantStart, m.CanStart())
			assert.Equal(t, tt.wantStop, m.CanStop())
		})
	}
}

func TestManager_GoReceivesCancellableContext(t *testing.T) {
	m := NewManager(nil, nil)
	var finished atomic.Bool

	m.Go(func(ctx context.Context) {
		<-ctx.Done()
		finished.Store(true)
	})

	m.Cancel()
	m.Cancel()
	require.NoError(t, m.Wait(time.Second))
	assert.True(t, finished.Load())
	assert.ErrorIs(t, m.Context().Err(), context.Canceled)
}

func TestManager_WaitWithoutWorkers(t *testing.T) {
	m := NewManager(nil, nil)
	assert.NoError(t, m.Wait(time.Millisecond))
}

func TestManager_WaitTimeout(t *testing.T) {
	m := NewManager(nil, nil)
	release := make(chan struct{})
	defer close(release)

	m.Go(func(context.Context) { <-release })

	assert.ErrorIs(t, m.Wait(10*time.Millisecond), ErrShutdownTimeout)
}

func TestManager_Concurrency(t *testing.T) {
	m := NewManager(nil, nil)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.State()
				_ = m.CanStart()
				_ = m.CanStop()
				_ = m.History()
			}
		}()
	}

	// Only one goroutine can win Stopped -> Starting.
	var wins atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.TransitionTo(StateStarting, "race") == nil {
				wins.Add(1)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}


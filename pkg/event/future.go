package event

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrCanceled is the error of a future cancelled by its owner.
	ErrCanceled = errors.New("event: request canceled")

	// ErrClosed is the error of a future whose synchronizer was closed.
	ErrClosed = errors.New("event: synchronizer closed")

	// ErrPending is returned by Result while the future has not settled.
	ErrPending = errors.New("event: request pending")
)

// Future is the pending result of an After or OnceAny request.
// It settles exactly once, either with payloads or with an error.
type Future struct {
	done   chan struct{}
	once   sync.Once
	values []any
	err    error

	// abort releases the request's registrations; nil for detached futures.
	abort func(error)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Failed returns a future already settled with err.
func Failed(err error) *Future {
	f := newFuture()
	f.settle(nil, err)
	return f
}

func (f *Future) settle(values []any, err error) bool {
	settled := false
	f.once.Do(func() {
		f.values = values
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the settled payloads, or ErrPending if the future has not settled.
func (f *Future) Result() ([]any, error) {
	select {
	case <-f.done:
		return f.copyValues(), f.err
	default:
		return nil, ErrPending
	}
}

// Wait blocks until the future settles or ctx ends. When ctx ends first the
// request is cancelled, its registrations are released and ctx.Err() is returned.
func (f *Future) Wait(ctx context.Context) ([]any, error) {
	select {
	case <-f.done:
		return f.copyValues(), f.err
	case <-ctx.Done():
	}
	f.cancel(ctx.Err())
	select {
	case <-f.done:
		// Settled concurrently with the context; the settled result wins.
		if f.err == nil {
			return f.copyValues(), nil
		}
	default:
	}
	return nil, ctx.Err()
}

// Cancel abandons the request and releases its registrations.
// Cancelling a settled future has no effect.
func (f *Future) Cancel() {
	f.cancel(ErrCanceled)
}

func (f *Future) cancel(err error) {
	if f.abort != nil {
		f.abort(err)
		return
	}
	f.settle(nil, err)
}

func (f *Future) copyValues() []any {
	if f.values == nil {
		return nil
	}
	out := make([]any, len(f.values))
	copy(out, f.values)
	return out
}

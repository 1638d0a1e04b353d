package event

import (
	"sync"
)

// Synchronizer resolves futures when event expressions are satisfied on a Bus.
// Requests are independent: one emission satisfies every pending request
// that references it.
type Synchronizer struct {
	bus *Bus

	mu      sync.Mutex
	pending map[*request]struct{}
	closed  bool
}

// NewSynchronizer creates a synchronizer listening on bus.
func NewSynchronizer(bus *Bus) *Synchronizer {
	return &Synchronizer{
		bus:     bus,
		pending: make(map[*request]struct{}),
	}
}

// After returns a future that resolves once expr is satisfied, with one
// payload per term in the order the terms appear in expr.
// An invalid expression yields a future that has already failed with an
// error matching ErrInvalidExpression.
func (s *Synchronizer) After(expr any) *Future {
	terms, err := Parse(expr)
	if err != nil {
		return Failed(err)
	}
	return s.await(terms)
}

// AfterTerms is After for an expression already in term form.
func (s *Synchronizer) AfterTerms(terms ...Term) *Future {
	return s.After(terms)
}

// OnceAny returns a future that resolves, at most once, when the first of
// names fires. The result holds that event's payload as its only element.
func (s *Synchronizer) OnceAny(names ...string) *Future {
	return s.After([]Term{Any(names...)})
}

// Pending returns the number of requests that have not settled.
func (s *Synchronizer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close fails every pending request with ErrClosed. Later requests fail
// immediately with ErrClosed.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	reqs := make([]*request, 0, len(s.pending))
	for r := range s.pending {
		reqs = append(reqs, r)
	}
	s.mu.Unlock()

	for _, r := range reqs {
		r.abort(ErrClosed)
	}
}

func (s *Synchronizer) await(terms []Term) *Future {
	r := &request{
		owner:     s,
		future:    newFuture(),
		payloads:  make([]any, len(terms)),
		satisfied: make([]bool, len(terms)),
		remaining: len(terms),
		subs:      make([][]uint64, len(terms)),
	}
	r.future.abort = r.abort

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Failed(ErrClosed)
	}
	s.pending[r] = struct{}{}
	s.mu.Unlock()

	// Handlers that fire during registration wait on r.mu, so a term never
	// loses track of a sibling registration.
	r.mu.Lock()
	for i, term := range terms {
		i := i
		for _, name := range term {
			id := s.bus.Subscribe(name, func(args ...any) {
				r.fire(i, args)
			})
			r.subs[i] = append(r.subs[i], id)
		}
	}
	r.mu.Unlock()

	return r.future
}

func (s *Synchronizer) remove(r *request) {
	s.mu.Lock()
	delete(s.pending, r)
	s.mu.Unlock()
}

// request tracks one After call: its payloads and its bus registrations.
type request struct {
	owner  *Synchronizer
	future *Future

	mu        sync.Mutex
	payloads  []any
	satisfied []bool
	remaining int
	subs      [][]uint64
	settled   bool
}

func (r *request) fire(term int, args []any) {
	r.mu.Lock()
	if r.settled || r.satisfied[term] {
		r.mu.Unlock()
		return
	}
	r.satisfied[term] = true
	if len(args) > 0 {
		r.payloads[term] = args[0]
	}
	release := r.subs[term]
	r.subs[term] = nil
	r.remaining--

	var values []any
	if r.remaining == 0 {
		r.settled = true
		values = make([]any, len(r.payloads))
		copy(values, r.payloads)
		release = append(release, r.drain()...)
	}
	r.mu.Unlock()

	for _, id := range release {
		r.owner.bus.Unsubscribe(id)
	}
	if values != nil {
		r.owner.remove(r)
		r.future.settle(values, nil)
	}
}

func (r *request) abort(err error) {
	r.mu.Lock()
	if r.settled {
		r.mu.Unlock()
		return
	}
	r.settled = true
	release := r.drain()
	r.mu.Unlock()

	for _, id := range release {
		r.owner.bus.Unsubscribe(id)
	}
	r.owner.remove(r)
	r.future.settle(nil, err)
}

// drain collects and forgets every outstanding registration. Caller holds r.mu.
func (r *request) drain() []uint64 {
	var ids []uint64
	for i, term := range r.subs {
		ids = append(ids, term...)
		r.subs[i] = nil
	}
	return ids
}

package event

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/trails/pkg/log"
)

// DefaultMaxListeners is the per-event listener count above which the bus
// warns about a possible leak. The synchronizer fans out one listener per
// name per request, so the limit is generous.
const DefaultMaxListeners = 128

// Handler receives the arguments passed to Emit.
type Handler func(args ...any)

type subscription struct {
	id      uint64
	name    string
	handler Handler
}

// Bus is a synchronous publish/subscribe event bus scoped to one application.
type Bus struct {
	mu           sync.RWMutex
	subs         map[string][]subscription
	index        map[uint64]string
	warned       map[string]bool
	nextID       atomic.Uint64
	maxListeners int
	logger       log.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithMaxListeners sets the per-event warning threshold. Zero disables the warning.
func WithMaxListeners(n int) BusOption {
	return func(b *Bus) {
		b.maxListeners = n
	}
}

// WithBusLogger sets the logger used for leak warnings and handler panics.
func WithBusLogger(logger log.Logger) BusOption {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:         make(map[string][]subscription),
		index:        make(map[uint64]string),
		warned:       make(map[string]bool),
		maxListeners: DefaultMaxListeners,
		logger:       log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for name and returns its subscription id.
func (b *Bus) Subscribe(name string, handler Handler) uint64 {
	id := b.nextID.Add(1)
	b.subscribe(id, name, handler)
	return id
}

func (b *Bus) subscribe(id uint64, name string, handler Handler) {
	b.mu.Lock()
	b.subs[name] = append(b.subs[name], subscription{id: id, name: name, handler: handler})
	b.index[id] = name
	count := len(b.subs[name])
	warn := b.maxListeners > 0 && count > b.maxListeners && !b.warned[name]
	if warn {
		b.warned[name] = true
	}
	b.mu.Unlock()

	if warn {
		b.logger.Warn("possible event listener leak",
			log.String("event", name),
			log.Int("listeners", count),
			log.Int("max", b.maxListeners),
		)
	}
}

// Once registers a handler that is removed before its first invocation.
func (b *Bus) Once(name string, handler Handler) uint64 {
	var fired atomic.Bool
	id := b.nextID.Add(1)
	b.subscribe(id, name, func(args ...any) {
		if !fired.CompareAndSwap(false, true) {
			return
		}
		b.Unsubscribe(id)
		handler(args...)
	})
	return id
}

// Unsubscribe removes a subscription. It reports whether the id was registered.
func (b *Bus) Unsubscribe(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	name, ok := b.index[id]
	if !ok {
		return false
	}
	delete(b.index, id)

	subs := b.subs[name]
	for i, sub := range subs {
		if sub.id == id {
			// Copy so a snapshot taken by a concurrent Emit stays intact.
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, name)
			} else {
				b.subs[name] = next
			}
			break
		}
	}
	return true
}

// Emit calls every handler registered for name with args, in registration
// order, and reports whether there were any.
// Handlers registered or removed while Emit runs do not affect this call.
func (b *Bus) Emit(name string, args ...any) bool {
	b.mu.RLock()
	subs := b.subs[name]
	b.mu.RUnlock()

	for _, sub := range subs {
		b.safeCall(sub, args)
	}
	return len(subs) > 0
}

// safeCall invokes a handler and recovers from any panic.
func (b *Bus) safeCall(sub subscription, args []any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				log.String("event", sub.name),
				log.Any("panic", r),
				log.String("stack", string(debug.Stack())),
			)
		}
	}()
	sub.handler(args...)
}

// ListenerCount returns the number of handlers registered for name.
func (b *Bus) ListenerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// Len returns the total number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.index)
}

// MaxListeners returns the per-event warning threshold.
func (b *Bus) MaxListeners() int {
	return b.maxListeners
}

// Clear removes every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscription)
	b.index = make(map[uint64]string)
	b.warned = make(map[string]bool)
}

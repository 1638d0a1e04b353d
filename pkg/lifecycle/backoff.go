package lifecycle

import (
	"math/rand"
	"time"
)

// Backoff yields exponentially growing delays with ±20% jitter.
// It is not safe for concurrent use.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff creates a new backoff with the given initial and max durations.
// A max below initial is raised to initial.
func NewBackoff(initial, max time.Duration) *Backoff {
	if max < initial {
		max = initial
	}
	return &Backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Next returns the delay before the next attempt and doubles the base
// delay for the attempt after, up to max.
func (b *Backoff) Next() time.Duration {
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset resets the backoff to the initial duration.
func (b *Backoff) Reset() {
	b.current = b.initial
}

// Current returns the base delay of the next attempt, without jitter.
func (b *Backoff) Current() time.Duration {
	return b.current
}

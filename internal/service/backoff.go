package service

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// drainBackoff yields the delay before the next drain after consecutive
// failed drains: base, 2*base, 4*base ... capped at max.
type drainBackoff struct {
	base time.Duration
	max  time.Duration

	backoff retry.Backoff
	current time.Duration
}

func newDrainBackoff(base, max time.Duration) *drainBackoff {
	b := &drainBackoff{base: base, max: max}
	b.Reset()
	return b
}

// Next advances the sequence and returns the new delay.
func (b *drainBackoff) Next() time.Duration {
	d, stop := b.backoff.Next()
	if stop || d <= 0 {
		d = b.max
	}
	b.current = d
	return d
}

// Current is the delay returned by the last Next, or base after a reset.
func (b *drainBackoff) Current() time.Duration {
	return b.current
}

func (b *drainBackoff) Reset() {
	b.backoff = retry.WithCappedDuration(b.max, retry.NewExponential(b.base))
	b.current = b.base
}

package storage

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// conflictBackoff spaces out retries of a conflicting write so that
// concurrent processes updating the same record do not retry in lockstep.
type conflictBackoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
	attempt    int
}

func newConflictBackoff() *conflictBackoff {
	return &conflictBackoff{
		initial:    5 * time.Millisecond,
		max:        250 * time.Millisecond,
		multiplier: 2.0,
		jitter:     0.2,
	}
}

// next returns the delay before the next attempt: initial * multiplier^attempt,
// capped at max, with +/- jitter applied.
func (b *conflictBackoff) next() time.Duration {
	delay := float64(b.initial) * math.Pow(b.multiplier, float64(b.attempt))
	if delay > float64(b.max) {
		delay = float64(b.max)
	}
	if b.jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * b.jitter
	}
	if delay < 0 {
		delay = float64(b.initial)
	}
	b.attempt++
	return time.Duration(delay)
}

// wait sleeps for the next delay or until ctx is done.
func (b *conflictBackoff) wait(ctx context.Context) error {
	t := time.NewTimer(b.next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

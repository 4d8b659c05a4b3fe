// Package poll implements bounded polling of a signal that has no push
// notification: check every interval, give up after maxAttempts.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when every attempt ran without the probe
// reporting done.
var ErrExhausted = errors.New("poll: attempts exhausted")

// Probe inspects the signal once. attempt counts from 1. Returning done=true
// stops polling with value; a non-nil error aborts polling immediately.
type Probe[T any] func(ctx context.Context, attempt int) (value T, done bool, err error)

// Until waits interval, runs probe, and repeats up to maxAttempts times,
// like a setInterval that clears itself. The first result with done=true
// wins; later attempts never run.
//
// It returns the number of attempts made alongside the value. Context
// cancellation ends the wait early with ctx.Err().
func Until[T any](ctx context.Context, interval time.Duration, maxAttempts int, probe Probe[T]) (T, int, error) {
	var zero T
	if maxAttempts <= 0 {
		return zero, 0, ErrExhausted
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, attempt - 1, ctx.Err()
		case <-timer.C:
		}

		value, done, err := probe(ctx, attempt)
		if err != nil {
			return zero, attempt, err
		}
		if done {
			return value, attempt, nil
		}
		timer.Reset(interval)
	}

	return zero, maxAttempts, ErrExhausted
}

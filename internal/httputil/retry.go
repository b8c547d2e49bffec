// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultMaxAttempts is used when a Policy's MaxAttempts is not positive.
	DefaultMaxAttempts = 3

	// maxBackoffUnits caps the linear backoff.
	maxBackoffUnits = 5
)

// ErrRetriesExhausted marks an operation that failed on every attempt.
// The last attempt's error is wrapped alongside it.
var ErrRetriesExhausted = errors.New("retries exhausted")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy is a capped linear backoff: after attempt n (1-based) it waits
// min(2n, 5) units before the next attempt. No wait follows the final attempt.
type Policy struct {
	// MaxAttempts is the total number of attempts (default 3).
	MaxAttempts int

	// Unit is the backoff time unit (default 1s).
	Unit time.Duration

	// Sleep replaces the real wait; tests use it to record delays.
	Sleep SleepFunc
}

// Backoff returns the delay that follows the given 1-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	units := 2 * attempt
	if units > maxBackoffUnits {
		units = maxBackoffUnits
	}
	unit := p.Unit
	if unit <= 0 {
		unit = time.Second
	}
	return time.Duration(units) * unit
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// Do calls fn until it succeeds, returns an error that retryable rejects,
// or MaxAttempts is reached. On exhaustion the returned error wraps both
// ErrRetriesExhausted and the last failure. If the context is cancelled
// during a backoff wait Do returns ctx.Err().
func (p Policy) Do(ctx context.Context, retryable func(error) bool, fn func(attempt int) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	limit := p.attempts()
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt >= limit {
			return errors.Join(ErrRetriesExhausted, err)
		}

		backoff := p.Backoff(attempt)
		log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", limit).
			Dur("backoff", backoff).
			Msg("request failed, retrying")

		if err := sleep(ctx, backoff); err != nil {
			return err
		}
	}
}

// Sleep waits for d, returning early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

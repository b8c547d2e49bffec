// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func alwaysRetry(error) bool { return true }

// recorder collects requested sleeps without waiting.
type recorder struct{ sleeps []time.Duration }

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.sleeps = append(r.sleeps, d)
	return nil
}

func TestPolicyBackoff(t *testing.T) {
	p := Policy{Unit: time.Second}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 5 * time.Second},
		{10, 5 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Backoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestPolicyBackoffDefaultUnit(t *testing.T) {
	assert.Equal(t, 2*time.Second, Policy{}.Backoff(1))
}

func TestPolicyDo_ImmediateSuccess(t *testing.T) {
	rec := &recorder{}
	calls := 0
	err := Policy{MaxAttempts: 3, Sleep: rec.sleep}.Do(context.Background(), alwaysRetry, func(int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.sleeps)
}

func TestPolicyDo_RetriesThenSuccess(t *testing.T) {
	rec := &recorder{}
	calls := 0
	err := Policy{MaxAttempts: 3, Unit: time.Millisecond, Sleep: rec.sleep}.Do(context.Background(), alwaysRetry, func(int) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Millisecond, 4 * time.Millisecond}, rec.sleeps)
}

func TestPolicyDo_ExhaustsAttempts(t *testing.T) {
	rec := &recorder{}
	calls := 0
	err := Policy{MaxAttempts: 3, Unit: time.Second, Sleep: rec.sleep}.Do(context.Background(), alwaysRetry, func(int) error {
		calls++
		return errTransient
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
	// No wait after the final attempt.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.sleeps)
}

func TestPolicyDo_DefaultMaxAttempts(t *testing.T) {
	rec := &recorder{}
	calls := 0
	_ = Policy{Sleep: rec.sleep}.Do(context.Background(), alwaysRetry, func(int) error {
		calls++
		return errTransient
	})
	assert.Equal(t, DefaultMaxAttempts, calls)
}

func TestPolicyDo_NonRetryableStops(t *testing.T) {
	rec := &recorder{}
	calls := 0
	permanent := errors.New("permanent")
	err := Policy{MaxAttempts: 5, Sleep: rec.sleep}.Do(context.Background(),
		func(err error) bool { return !errors.Is(err, permanent) },
		func(int) error {
			calls++
			return permanent
		})
	assert.ErrorIs(t, err, permanent)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.sleeps)
}

func TestPolicyDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Policy{MaxAttempts: 5, Unit: time.Second}.Do(ctx, alwaysRetry, func(int) error {
		return errTransient
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

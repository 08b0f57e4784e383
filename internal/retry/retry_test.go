package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithExponentialBackoffSucceedsAfterRetry(t *testing.T) {
	calls := 0
	result := WithExponentialBackoff(context.Background(), fastConfig(), func(ctx context.Context, attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("temporary")
		}
		return nil
	})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 2, calls)
	assert.NoError(t, result.LastError)
}

func TestWithExponentialBackoffStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	cfg := fastConfig()
	cfg.ShouldRetry = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	result := WithExponentialBackoff(context.Background(), cfg, func(ctx context.Context, attempt int) error {
		calls++
		return permanent
	})

	assert.False(t, result.Success)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, result.LastError, permanent)
}

func TestWithExponentialBackoffExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(ctx context.Context, attempt int) error {
		calls++
		return errors.New("down")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestWithExponentialBackoffHonoursCancellation(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	result := WithExponentialBackoff(ctx, cfg, func(ctx context.Context, attempt int) error {
		cancel()
		return errors.New("down")
	})

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.LastError, context.Canceled)
}

func TestCalculateDelay(t *testing.T) {
	cfg := &RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{6, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := calculateDelay(cfg, tt.attempt); got != tt.want {
			t.Errorf("calculateDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

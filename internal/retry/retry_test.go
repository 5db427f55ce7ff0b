package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"wotmaps-api/internal/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// failing returns an operation that fails n times before succeeding, and a
// pointer to its call count.
func failing(n int) (func(context.Context) (string, error), *int) {
	calls := 0
	return func(context.Context) (string, error) {
		calls++
		if calls <= n {
			return "", fmt.Errorf("attempt %d failed", calls)
		}
		return "connected", nil
	}, &calls
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	op, calls := failing(2)

	result, err := retry.Do(context.Background(), zap.New(core), 5, time.Millisecond, op)

	require.NoError(t, err)
	assert.Equal(t, "connected", result)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, 2, logs.FilterMessage("Attempt failed, retrying").Len())
}

func TestDoReturnsLastError(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		wantCalls   int
	}{
		{name: "exhausted", maxAttempts: 3, wantCalls: 3},
		{name: "single attempt", maxAttempts: 1, wantCalls: 1},
		{name: "zero treated as one", maxAttempts: 0, wantCalls: 1},
		{name: "negative treated as one", maxAttempts: -4, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, calls := failing(10)

			result, err := retry.Do(context.Background(), zap.NewNop(), tt.maxAttempts, time.Millisecond, op)

			require.Error(t, err)
			assert.Equal(t, fmt.Sprintf("attempt %d failed", tt.wantCalls), err.Error())
			assert.Empty(t, result)
			assert.Equal(t, tt.wantCalls, *calls)
		})
	}
}

func TestDoSucceedsOnLastAttempt(t *testing.T) {
	op, calls := failing(2)

	result, err := retry.Do(context.Background(), zap.NewNop(), 3, time.Millisecond, op)

	require.NoError(t, err)
	assert.Equal(t, "connected", result)
	assert.Equal(t, 3, *calls)
}

func TestDoKeepsErrorIdentity(t *testing.T) {
	sentinel := errors.New("connection refused")

	_, err := retry.Do(context.Background(), zap.NewNop(), 2, time.Millisecond, func(context.Context) (int, error) {
		return 0, sentinel
	})

	assert.Same(t, sentinel, err)
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	start := time.Now()
	_, err := retry.Do(ctx, zap.NewNop(), 100, time.Hour, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("unavailable")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestDoWaitsBetweenAttempts(t *testing.T) {
	op, _ := failing(2)
	interval := 20 * time.Millisecond

	start := time.Now()
	_, err := retry.Do(context.Background(), zap.NewNop(), 3, interval, op)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}

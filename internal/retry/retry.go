// Package retry repeats a failing operation a bounded number of times with a
// fixed pause between attempts.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Do calls op until it succeeds or maxAttempts calls have failed, sleeping
// interval between attempts. maxAttempts below 1 is treated as 1. The error
// of the last attempt is returned unwrapped. If ctx is cancelled while
// waiting, Do returns the context error.
func Do[T any](ctx context.Context, logger *zap.Logger, maxAttempts int, interval time.Duration, op func(context.Context) (T, error)) (T, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= maxAttempts {
			return zero, err
		}

		logger.Warn("Attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("wait", interval),
			zap.Error(err))

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

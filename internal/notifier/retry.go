package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawwatch/internal/clock"
	logx "drawwatch/pkg/logx"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy bounds Retry.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Classifier labels an error for logging (e.g. "auth", "connection").
type Classifier func(err error) string

// Retry calls op until it succeeds or MaxAttempts is reached, sleeping Delay
// between attempts. It returns the number of attempts made. On exhaustion the
// error wraps both ErrRetriesExhausted and the last cause.
func Retry(ctx context.Context, clk clock.Clock, p RetryPolicy, log logx.Logger, classify Classifier, op func(ctx context.Context, attempt int) error) (int, error) {
	if clk == nil {
		clk = clock.Real{}
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		fields := []logx.Field{logx.Int("attempt", attempt), logx.Int("max", maxAttempts), logx.Err(err)}
		if classify != nil {
			fields = append(fields, logx.String("cause", classify(err)))
		}
		log.Warn("delivery attempt failed", fields...)

		if attempt >= maxAttempts {
			break
		}
		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}
		if p.Delay > 0 {
			log.Info("retrying", logx.Duration("delay", p.Delay))
			if err := clk.Sleep(ctx, p.Delay); err != nil {
				return attempt, err
			}
		}
	}
	return maxAttempts, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxAttempts, lastErr)
}

// Package retry runs operations repeatedly when they fail with a
// flowerr.RetryableError.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/flowerr"
	"github.com/simplesurance/prflow/internal/logfields"
)

const (
	defBackoffInitialInterval     = 5 * time.Second
	defBackoffRandomizationFactor = 0.5
)

// Retryer executes a function repeatedly until it was successful, it failed
// with a non-retryable error or the retry timeout expired.
// A Retryer with a timeout of 0 runs functions exactly once.
type Retryer struct {
	logger  *zap.Logger
	timeout time.Duration

	backoffInitialInterval     time.Duration
	backoffRandomizationFactor float64
}

func NewRetryer(timeout time.Duration) *Retryer {
	return &Retryer{
		logger:                     zap.L().Named("retryer"),
		timeout:                    timeout,
		backoffInitialInterval:     defBackoffInitialInterval,
		backoffRandomizationFactor: defBackoffRandomizationFactor,
	}
}

func logFieldResult(val string) zap.Field {
	return zap.String("operation_result", val)
}

// Run executes fn until it was successful, it returned an error that
// does not wrap flowerr.RetryableError, the retry timeout expired or the
// context was cancelled.
func (r *Retryer) Run(ctx context.Context, fn func(context.Context) error, logF []zap.Field) error {
	if r.timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancelFn := context.WithTimeout(ctx, r.timeout)
	defer cancelFn()

	endTime := time.Now().Add(r.timeout)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.backoffInitialInterval
	bo.RandomizationFactor = r.backoffRandomizationFactor
	bo.MaxElapsedTime = 0
	bo.Reset()

	retryTimer := time.NewTimer(0)
	defer retryTimer.Stop()

	var tryCnt uint
	var lastErr error

	for {
		select {
		case <-ctx.Done():
			r.logger.Info(
				"giving up retrying operation",
				append(logF,
					logfields.Event("operation_retry_timeout"),
					logFieldResult("cancelled"),
					zap.Uint("try_count", tryCnt),
					zap.NamedError("last_error", lastErr),
				)...,
			)

			if lastErr != nil {
				return fmt.Errorf("%w, last error: %w", ctx.Err(), lastErr)
			}

			return ctx.Err()

		case <-retryTimer.C:
			tryCnt++
			logger := r.logger.With(logF...).With(zap.Uint("try_count", tryCnt))

			err := fn(ctx)
			if err == nil {
				if tryCnt > 1 {
					logger.Info(
						"operation succeeded after retry",
						logfields.Event("operation_retry_succeeded"),
						logFieldResult("success"),
					)
				}

				return nil
			}

			lastErr = err
			logger = logger.With(zap.Error(err))

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			retryable, after := flowerr.IsRetryable(err)
			if !retryable {
				return err
			}

			if after.After(endTime) {
				logger.Warn(
					"operation failed, next possible retry time is after timeout expiration",
					logfields.Event("operation_failed"),
					zap.Time("earliest_allowed_retry", after),
				)

				return err
			}

			retryIn := bo.NextBackOff()
			if d := time.Until(after); d > retryIn {
				retryIn = d
			}

			retryTimer.Reset(retryIn)
			logger.Warn(
				"operation failed, retry scheduled",
				logfields.Event("operation_retry_scheduled"),
				zap.Duration("retry_in", retryIn),
				zap.Duration("age", bo.GetElapsedTime()),
			)
		}
	}
}

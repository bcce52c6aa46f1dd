package apiclient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

// ProbeEndpoint is requested to check that the backend answers at all.
const ProbeEndpoint = "/statistics"

// Probe waits for the backend to become reachable, retrying with exponential backoff until
// maxElapsed passes or ctx ends. Any HTTP answer, including 404 or 5xx, counts as
// reachable; only network failures are retried.
func Probe(ctx context.Context, transport *Transport, logger *zap.Logger, maxElapsed time.Duration) error {
	const (
		initialInterval = 500 * time.Millisecond
		maxInterval     = 10 * time.Second
	)

	if maxElapsed <= 0 {
		maxElapsed = 30 * time.Second
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = maxElapsed

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		_, err := transport.Get(ctx, ProbeEndpoint, nil)
		if err != nil && (IsNetworkError(err) || ctx.Err() != nil) {
			return err
		}
		logger.Sugar().Infof("Issue backend at '%s' reachable after %d attempt(s)", transport.BaseURL(), attempt)
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		logger.Warn("Retrying connection to issue backend", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		logger.Sugar().Warnf("Issue backend at '%s' unreachable: %v", transport.BaseURL(), err)
	}
	return err
}

package plugins

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/va6996/ecochat/log"
)

// MaxTries bounds every retried upstream call.
const MaxTries = 3

// RetryInterval is the first backoff delay.
var RetryInterval = 250 * time.Millisecond

// Retry runs fn with exponential backoff. Only temporary UpstreamErrors are
// retried; anything else stops immediately.
func Retry[T any](ctx context.Context, op string, fn func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = RetryInterval

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if ue, ok := AsUpstream(err); ok && ue.Temporary() {
			log.Warnf(ctx, "%s attempt %d failed: %v", op, attempt, err)
			return v, err
		}
		return v, backoff.Permanent(err)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(MaxTries))
}

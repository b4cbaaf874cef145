package service

import (
	"context"
	"time"

	"cf_bridge/internal/cloudflare"
)

const (
	networkRetryDelay = 500 * time.Millisecond
	// maxRetryAfterWait bounds how long a read will wait out a rate
	// limit before giving up and surfacing it
	maxRetryAfterWait = 10 * time.Second
)

// retryRead runs a read-only API call, retrying once on a transport
// failure or a short rate limit. Mutations must never go through this;
// a retried mutation could apply twice.
func retryRead(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}

	var delay time.Duration
	if cloudflare.IsNetwork(err) {
		delay = networkRetryDelay
	} else if retryAfter, ok := cloudflare.IsRateLimited(err); ok {
		if retryAfter > maxRetryAfterWait {
			return err
		}
		delay = retryAfter
	} else {
		return err
	}

	select {
	case <-ctx.Done():
		return err
	case <-time.After(delay):
	}
	return fn()
}

package services

import (
	"context"
	"time"

	"github.com/prasdika/fieldbooking/internal/core/domain"
)

const (
	storeRetryAttempts = 3
	storeRetryBackoff  = 100 * time.Millisecond
)

// withRetry re-runs op on transient store failures with exponential
// backoff. Validation, conflict, and state errors pass through untouched.
func withRetry(ctx context.Context, op func() error) error {
	var err error
	backoff := storeRetryBackoff

	for attempt := 1; attempt <= storeRetryAttempts; attempt++ {
		err = op()
		if err == nil || !domain.IsTransient(err) {
			return err
		}

		if attempt == storeRetryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return err
}

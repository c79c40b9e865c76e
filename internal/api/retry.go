package api

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/inisoye/halver-sub001/internal/config"
)

// retryPolicy bounds the automatic retry of read requests. Mutations are
// never retried here; an interrupted write is replayed by the caller under
// its original idempotency key instead.
type retryPolicy struct {
	baseDelay  time.Duration
	maxRetries int
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	return retryPolicy{
		baseDelay:  cfg.BaseDelay,
		maxRetries: cfg.MaxRetries,
	}
}

// doRead performs one GET with bounded retries on transient failures.
func (c *Client) doRead(ctx context.Context, path string) ([]byte, error) {
	attempts := c.retry.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := c.do(ctx, http.MethodGet, path, nil)
		if err == nil {
			return data, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}

		if attempt < attempts-1 {
			delay := c.retry.backoff(attempt)
			c.logger.Debug("retrying read", "path", path, "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

// isRetryable treats server faults and transport failures as transient.
// Client errors, auth rejections included, fail immediately so session
// teardown is never delayed by backoff.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	return true
}

// backoff doubles the base delay per attempt and adds jitter so clients
// recovering together don't stampede the backend.
func (p retryPolicy) backoff(attempt int) time.Duration {
	base := p.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(100)) * time.Millisecond

	return base + jitter
}

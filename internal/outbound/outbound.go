// Package outbound applies the timeout and retry rules for calls to the identity
// provider and the store.
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultTimeout = 5 * time.Second
	defaultBackoff = 100 * time.Millisecond
)

type Policy struct {
	Timeout     time.Duration
	ReadRetries uint64
	Backoff     time.Duration
}

func NewPolicy(timeout time.Duration) Policy {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Policy{Timeout: timeout, ReadRetries: 1, Backoff: defaultBackoff}
}

// Call runs fn once under the policy timeout. Used for writes, which are never retried.
func (p Policy) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()
	return fn(cctx)
}

// Read runs an idempotent fn under the policy timeout and retries it ReadRetries times.
// Errors matching any of permanent are returned immediately.
func (p Policy) Read(ctx context.Context, fn func(ctx context.Context) error, permanent ...error) error {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	b := retry.WithMaxRetries(p.ReadRetries, retry.NewConstant(backoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := p.Call(ctx, fn)
		if err == nil {
			return nil
		}
		for _, perm := range permanent {
			if errors.Is(err, perm) {
				return err
			}
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (p Policy) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

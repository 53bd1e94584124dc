// Package retry provides the bounded retry/backoff policy applied to
// external calls (embedding model, vector store). Call sites wrap their
// operation in a policy instead of scattering ad hoc retry loops.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

// Policy is an explicit bounded-retry policy: at most MaxAttempts total
// attempts with exponential backoff between them.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy matches the documented defaults: three attempts,
// 100ms initial backoff capped at 2s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Permanent marks an error as non-retryable; Do surfaces it
// immediately without consuming the remaining attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op with this policy. Context cancellation stops retrying at
// once and returns the context error. The last attempt's error is
// returned after the budget is exhausted.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		// Cancellation is the caller abandoning the request, not a
		// transient fault.
		if errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// DoTimed runs op with this policy, bounding every attempt by the given
// timeout. A deadline expiry is classified as domain.ErrTimeout and
// counts toward the retry budget.
func (p Policy) DoTimed(ctx context.Context, timeout time.Duration, op func(ctx context.Context) error) error {
	return p.Do(ctx, func(ctx context.Context) error {
		attemptCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		err := op(attemptCtx)
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeTimeout, "external call exceeded its deadline", err)
		}
		return err
	})
}

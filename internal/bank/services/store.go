package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/sethvargo/go-retry"
)

// storeErr translates a repository failure into ErrStoreUnavailable. Domain
// sentinels pass through untouched.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrAlreadyExists),
		errors.Is(err, common.ErrInsufficientFunds),
		errors.Is(err, common.ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
}

// storePolicy bounds every store call with a deadline and retries
// idempotent reads with exponential backoff.
type storePolicy struct {
	timeout   time.Duration
	retries   uint64
	retryBase time.Duration
}

// call runs fn once under the store deadline.
func (p storePolicy) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return storeErr(fn(ctx))
}

// read runs fn under the store deadline, retrying on ErrStoreUnavailable.
// Only use it for calls without side effects.
func (p storePolicy) read(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(p.retries, retry.NewExponential(p.retryBase))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := p.call(ctx, fn)
		if common.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

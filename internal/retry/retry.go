// Package retry applies a bounded constant-delay retry policy to
// operations that fail with transient errors.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/custodia-labs/lexicon/internal/logger"
)

// ErrExhausted is wrapped into the error of an operation that was still
// failing transiently when the attempt budget ran out.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Delay is the constant wait between tries.
	Delay time.Duration
}

// DefaultPolicy waits up to ten minutes for a lock to clear.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 300, Delay: 2 * time.Second}
}

// Do runs op until it succeeds, fails with an error transient rejects,
// the context ends, or the policy is exhausted. Non-transient errors are
// returned unchanged after the first try.
func Do(ctx context.Context, p Policy, name string, transient func(error) bool, op func() error) error {
	attempts := max(p.MaxAttempts, 1)
	tries := 0

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		if err := op(); err != nil {
			if !transient(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Delay)),
		backoff.WithMaxTries(uint(attempts)),
		// The attempt count is the only ceiling.
		backoff.WithMaxElapsedTime(time.Duration(attempts)*p.Delay+time.Minute),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("%s: transient failure (attempt %d/%d), retrying in %s: %v", name, tries, attempts, next, err)
		}),
	)
	if err == nil {
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if transient(err) && ctx.Err() == nil {
		logger.Warn("%s: giving up after %d attempts: %v", name, tries, err)
		return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, tries, err)
	}
	return err
}

package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/logger"
)

// RetryPolicy bounds the retries of a store read that hits a transient error.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// MinBackoff and MaxBackoff clamp every randomized delay.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// DefaultRetryPolicy retries five times with delays between one and ten seconds.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 5,
	MinBackoff:  1 * time.Second,
	MaxBackoff:  10 * time.Second,
}

// clampedBackOff keeps every delay of the wrapped policy within [min, max].
type clampedBackOff struct {
	backoff.BackOff
	min, max time.Duration
}

func (c *clampedBackOff) NextBackOff() time.Duration {
	d := c.BackOff.NextBackOff()
	switch {
	case d == backoff.Stop:
		return d
	case d < c.min:
		return c.min
	case d > c.max:
		return c.max
	default:
		return d
	}
}

// newBackOff builds the randomized exponential schedule for p.
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.MinBackoff
	exp.MaxInterval = p.MaxBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.5
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	clamped := &clampedBackOff{BackOff: exp, min: p.MinBackoff, max: p.MaxBackoff}
	return backoff.WithContext(backoff.WithMaxRetries(clamped, uint64(retries)), ctx)
}

// withRetry runs op until it succeeds, fails permanently, or the policy is
// exhausted. Only transient errors are retried. An exhausted policy returns
// the last error wrapped with domain.ErrStoreTransient.
func withRetry(ctx context.Context, p RetryPolicy, name string, op func() error) error {
	attempts := 0
	err := backoff.RetryNotify(
		func() error {
			attempts++
			err := op()
			if err == nil || isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		},
		p.newBackOff(ctx),
		func(err error, wait time.Duration) {
			logger.Warn("store: %s attempt %d failed, retrying in %s: %v", name, attempts, wait.Round(time.Millisecond), err)
		},
	)
	if err == nil {
		return nil
	}
	if isTransient(err) {
		if errors.Is(err, domain.ErrStoreTransient) {
			return fmt.Errorf("%s: gave up after %d attempts: %w", name, attempts, err)
		}
		return fmt.Errorf("%w: %s: gave up after %d attempts: %w", domain.ErrStoreTransient, name, attempts, err)
	}
	return err
}

// isTransient reports whether err is a lock or busy condition worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, domain.ErrStoreTransient) {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

// isDuplicateKey reports whether err is a primary key or uniqueness violation.
// Other constraint failures, such as NOT NULL, are not duplicates.
func isDuplicateKey(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

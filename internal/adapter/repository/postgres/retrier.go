package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes worth another attempt.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
	pgErrAdminShutdown        = "57P01"
	pgErrCannotConnectNow     = "57P03"
)

// RetryPolicy bounds how saga store writes are retried.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy returns the policy used by the services.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

// Retrier re-runs saga store writes that hit transient PostgreSQL errors.
type Retrier struct {
	policy RetryPolicy
	log    zerolog.Logger
}

// NewRetrier creates a Retrier with DefaultRetryPolicy.
func NewRetrier(log zerolog.Logger) *Retrier {
	return NewRetrierWithPolicy(DefaultRetryPolicy(), log)
}

// NewRetrierWithPolicy creates a Retrier with a custom policy.
func NewRetrierWithPolicy(policy RetryPolicy, log zerolog.Logger) *Retrier {
	return &Retrier{
		policy: policy,
		log:    log.With().Str("component", "saga_store_retrier").Logger(),
	}
}

// Retry runs op until it succeeds, fails with a non-transient error or the
// policy is exhausted. The last error is returned unwrapped.
func (r *Retrier) Retry(ctx context.Context, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialInterval
	exp.MaxInterval = r.policy.MaxInterval
	exp.MaxElapsedTime = r.policy.MaxElapsedTime

	b := backoff.WithContext(backoff.WithMaxRetries(exp, r.policy.MaxRetries), ctx)

	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		return err
	}, b, func(err error, wait time.Duration) {
		r.log.Warn().
			Err(err).
			Str("sqlstate", sqlState(err)).
			Dur("backoff", wait).
			Msg("transient saga store error, retrying")
	})
}

func isRetryableError(err error) bool {
	switch sqlState(err) {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable,
		pgErrAdminShutdown, pgErrCannotConnectNow:
		return true
	}

	return pgconn.SafeToRetry(err)
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

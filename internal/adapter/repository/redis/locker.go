package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/domain"
)

const accountLockPrefix = "gobank:lock:account:"

// LockOptions tunes the per-account mutexes.
type LockOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultLockOptions returns options suited to a single transfer.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

// AccountLocker implements usecase.AccountLocker with one redsync mutex per account.
type AccountLocker struct {
	rs   *redsync.Redsync
	opts LockOptions
	log  zerolog.Logger
}

// NewAccountLocker creates a new AccountLocker.
func NewAccountLocker(client redis.UniversalClient, opts LockOptions, log zerolog.Logger) *AccountLocker {
	if opts.Tries <= 0 {
		opts.Tries = 1
	}

	return &AccountLocker{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
		log:  log.With().Str("component", "account_locker").Logger(),
	}
}

// Lock acquires the account locks in the given order. If any lock cannot be
// taken, the ones already held are released and ErrAccountLocked is returned.
func (l *AccountLocker) Lock(ctx context.Context, numbers ...domain.AccountNumber) (func(context.Context), error) {
	held := make([]*redsync.Mutex, 0, len(numbers))

	release := func(ctx context.Context) {
		for i := len(held) - 1; i >= 0; i-- {
			if ok, err := held[i].UnlockContext(ctx); err != nil || !ok {
				l.log.Warn().Err(err).Str("lock", held[i].Name()).Msg("failed to release account lock")
			}
		}
	}

	for _, n := range numbers {
		mutex := l.rs.NewMutex(accountLockPrefix+n.String(),
			redsync.WithExpiry(l.opts.Expiry),
			redsync.WithTries(l.opts.Tries),
			redsync.WithRetryDelay(l.opts.RetryDelay),
		)

		if err := mutex.LockContext(ctx); err != nil {
			release(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrAccountLocked, n, err)
		}

		held = append(held, mutex)
	}

	return release, nil
}

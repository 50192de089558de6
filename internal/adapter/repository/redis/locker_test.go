package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gobank/internal/domain"
)

func testLockOptions() LockOptions {
	return LockOptions{Expiry: 5 * time.Second, Tries: 1, RetryDelay: time.Millisecond}
}

func TestAccountLocker_LockAndRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	locker := NewAccountLocker(client, testLockOptions(), zerolog.Nop())
	a, b := domain.GenerateAccountNumber(), domain.GenerateAccountNumber()

	unlock, err := locker.Lock(context.Background(), a, b)
	require.NoError(t, err)

	assert.True(t, mr.Exists(accountLockPrefix+a.String()))
	assert.True(t, mr.Exists(accountLockPrefix+b.String()))

	unlock(context.Background())

	assert.False(t, mr.Exists(accountLockPrefix+a.String()))
	assert.False(t, mr.Exists(accountLockPrefix+b.String()))
}

func TestAccountLocker_HeldLockRejectsSecondCaller(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	locker := NewAccountLocker(client, testLockOptions(), zerolog.Nop())
	a, b := domain.GenerateAccountNumber(), domain.GenerateAccountNumber()

	unlockB, err := locker.Lock(context.Background(), b)
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), a, b)
	require.ErrorIs(t, err, domain.ErrAccountLocked)

	// a was taken before b failed and must have been given back.
	assert.False(t, mr.Exists(accountLockPrefix+a.String()))

	unlockB(context.Background())

	unlock, err := locker.Lock(context.Background(), a, b)
	require.NoError(t, err)
	unlock(context.Background())
}

func TestAccountLocker_ExpiryIsApplied(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	locker := NewAccountLocker(client, testLockOptions(), zerolog.Nop())
	a := domain.GenerateAccountNumber()

	_, err := locker.Lock(context.Background(), a)
	require.NoError(t, err)

	mr.FastForward(6 * time.Second)

	unlock, err := locker.Lock(context.Background(), a)
	require.NoError(t, err)
	unlock(context.Background())
}

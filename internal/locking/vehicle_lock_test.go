package locking

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"carrental-backend/internal/domain"
)

func newTestLocker(maxRetries int) (*redisLocker, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	return &redisLocker{
		client:     client,
		ttl:        5 * time.Second,
		retryDelay: time.Millisecond,
		maxRetries: maxRetries,
	}, mock
}

func TestRedisLocker_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("Free lock acquired on first attempt", func(t *testing.T) {
		locker, mock := newTestLocker(3)
		mock.Regexp().ExpectSetNX("vehicle:lock:7", `.+`, 5*time.Second).SetVal(true)

		token, err := locker.Acquire(ctx, 7)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Held lock acquired after retry", func(t *testing.T) {
		locker, mock := newTestLocker(3)
		mock.Regexp().ExpectSetNX("vehicle:lock:7", `.+`, 5*time.Second).SetVal(false)
		mock.Regexp().ExpectSetNX("vehicle:lock:7", `.+`, 5*time.Second).SetVal(true)

		token, err := locker.Acquire(ctx, 7)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Conflict after exhausting retries", func(t *testing.T) {
		locker, mock := newTestLocker(3)
		for i := 0; i < 3; i++ {
			mock.Regexp().ExpectSetNX("vehicle:lock:7", `.+`, 5*time.Second).SetVal(false)
		}

		token, err := locker.Acquire(ctx, 7)
		assert.Error(t, err)
		assert.Empty(t, token)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})

	t.Run("Cancelled context stops the wait", func(t *testing.T) {
		locker, mock := newTestLocker(3)
		mock.Regexp().ExpectSetNX("vehicle:lock:7", `.+`, 5*time.Second).SetVal(false)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		token, err := locker.Acquire(cancelled, 7)
		assert.Error(t, err)
		assert.Empty(t, token)
	})
}

func TestRedisLocker_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("Releases with matching token", func(t *testing.T) {
		locker, mock := newTestLocker(3)
		mock.Regexp().ExpectEval(`(?s).+`, []string{"vehicle:lock:7"}, `.+`).SetVal(int64(1))

		err := locker.Release(ctx, 7, "token-a")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Expired lock held by someone else is left alone", func(t *testing.T) {
		locker, mock := newTestLocker(3)
		mock.Regexp().ExpectEval(`(?s).+`, []string{"vehicle:lock:7"}, `.+`).SetVal(int64(0))

		err := locker.Release(ctx, 7, "stale-token")
		assert.NoError(t, err)
	})
}

package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"carrental-backend/internal/domain"
)

// VehicleLocker serializes booking operations per vehicle. Admissions
// and lifecycle transitions for the same vehicle take the lock before
// touching storage; operations on different vehicles run in parallel.
type VehicleLocker interface {
	// Acquire blocks briefly for the vehicle's lock and returns a
	// fencing token that must be presented on release.
	Acquire(ctx context.Context, vehicleID int32) (string, error)
	Release(ctx context.Context, vehicleID int32, token string) error
}

// releaseScript deletes the lock key only when it still holds our
// token, so an expired lock reacquired by another request is never
// released by the old holder.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type redisLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
	maxRetries int
}

func NewRedisVehicleLocker(client *redis.Client) VehicleLocker {
	return &redisLocker{
		client:     client,
		ttl:        5 * time.Second,
		retryDelay: 50 * time.Millisecond,
		maxRetries: 20,
	}
}

func lockKey(vehicleID int32) string {
	return fmt.Sprintf("vehicle:lock:%d", vehicleID)
}

func (l *redisLocker) Acquire(ctx context.Context, vehicleID int32) (string, error) {
	token := uuid.NewString()
	key := lockKey(vehicleID)

	for attempt := 0; attempt < l.maxRetries; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return "", domain.PersistenceError("acquire vehicle lock", err)
		}
		if ok {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", domain.PersistenceError("acquire vehicle lock", ctx.Err())
		case <-time.After(l.retryDelay):
		}
	}

	return "", domain.ConflictError("vehicle %d is locked by another request", vehicleID)
}

func (l *redisLocker) Release(ctx context.Context, vehicleID int32, token string) error {
	if err := l.client.Eval(ctx, releaseScript, []string{lockKey(vehicleID)}, token).Err(); err != nil && err != redis.Nil {
		return domain.PersistenceError("release vehicle lock", err)
	}
	return nil
}

package pending

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token, so an
// expired slot re-acquired by another submission is left alone.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// RedisTracker shares in-flight keys across gateway replicas. Each slot
// expires after ttl so a crashed replica cannot pin a form forever.
type RedisTracker struct {
	client   redis.Cmdable
	prefix   string
	ttl      time.Duration
	newToken func() string
}

func NewRedisTracker(client redis.Cmdable, prefix string, ttl time.Duration) (*RedisTracker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("pending ttl must be positive")
	}
	return &RedisTracker{
		client:   client,
		prefix:   prefix,
		ttl:      ttl,
		newToken: uuid.NewString,
	}, nil
}

func (t *RedisTracker) Acquire(ctx context.Context, key string) (Release, error) {
	redisKey := t.prefix + key
	token := t.newToken()

	ok, err := t.client.SetNX(ctx, redisKey, token, t.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring pending slot: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyPending
	}

	var once sync.Once
	return func(ctx context.Context) error {
		var err error
		once.Do(func() {
			err = t.client.Eval(ctx, releaseScript, []string{redisKey}, token).Err()
			if err != nil {
				err = fmt.Errorf("redis error releasing pending slot: %w", err)
			}
		})
		return err
	}, nil
}

package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -destination=mocks/mock_reserver.go -package=mocks blackjack-service/internal/service/session Reserver

const DefaultKeyPrefix = "blackjack"

// Reserver claims game ids in a store shared by every replica, so two
// processes never hand out the same id.
type Reserver interface {
	Reserve(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

type RedisReserver struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisReserver keys claims as "<prefix>:game:<id>"; an empty prefix uses DefaultKeyPrefix.
func NewRedisReserver(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisReserver {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisReserver{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisReserver) Reserve(ctx context.Context, id string) (bool, error) {
	return r.rdb.SetNX(ctx, r.Key(id), 1, r.ttl).Result()
}

func (r *RedisReserver) Release(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.Key(id)).Err()
}

func (r *RedisReserver) Key(id string) string {
	return r.prefix + ":game:" + id
}

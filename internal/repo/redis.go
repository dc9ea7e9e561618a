package repo

import (
	"context"
	"fmt"
	"time"

	"blackjack-service/internal/config"
	"blackjack-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 3 * time.Second

// RDB backs cross-replica game id reservation. It stays nil when no redis
// address is configured and ids are then only unique within this process.
var RDB *redis.Client

func InitRedis() {
	conf := config.GlobalConfig.Redis
	var err error
	RDB, err = OpenRedis(conf)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis for game id reservation",
			zap.String("addr", conf.Addr),
			zap.Error(err),
		)
	}
	if RDB == nil {
		logger.Log.Info("Redis disabled, game ids are reserved in-process only")
		return
	}
	logger.Log.Info("Redis connected, game ids are reserved across replicas",
		zap.String("addr", conf.Addr),
		zap.String("keyPrefix", config.GlobalConfig.Game.ReservePrefix),
	)
}

// OpenRedis returns nil, nil when conf.Addr is empty.
func OpenRedis(conf config.RedisConfig) (*redis.Client, error) {
	if conf.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", conf.Addr, err)
	}
	return rdb, nil
}

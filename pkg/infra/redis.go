package infra

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/trendora/reco/internal/config/structs"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// InitRedis initializes the single Redis client from app config.
func InitRedis() {
	redisOnce.Do(func() {
		cfg := structs.GetAppConfig().Configs
		if cfg.RedisAddr == "" {
			panic("redis addr is not set")
		}
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			panic("redis ping failed: " + err.Error())
		}
	})
}

// GetRedisClient returns the shared Redis client. InitRedis must be called first.
func GetRedisClient() *redis.Client {
	return redisClient
}

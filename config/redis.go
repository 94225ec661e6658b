package config

import (
	"context"
	"os"
	"time"

	"github.com/nadifalfairuz/digistore/utils"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// InitRedis connects the catalog cache. The cache is optional: when
// REDIS_HOST is unset or the server is unreachable every read goes
// straight to the database.
func InitRedis() {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		utils.LogInfo("REDIS_HOST not set, catalog cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:         redisHost,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		utils.LogError("Redis unreachable, catalog cache disabled: %v", err)
		return
	}

	Redis = client
	utils.LogInfo("Redis connected: %s", redisHost)
}

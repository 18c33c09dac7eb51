// database/redis.go - Optional Redis connection for leaderboard caching
package database

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

// InitRedis connects to Redis if REDIS_ADDR is set. Redis is optional:
// without it leaderboards fall back to SQL queries.
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("Redis not configured, leaderboard cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable, continuing without cache: %v", err)
		return
	}

	rdb = client
	log.Println("✅ Redis connected successfully")
}

// GetRedis returns the Redis client, or nil when Redis is not available.
func GetRedis() *redis.Client {
	return rdb
}

// CloseRedis closes the Redis connection if one was opened.
func CloseRedis() {
	if rdb != nil {
		rdb.Close()
		rdb = nil
	}
}

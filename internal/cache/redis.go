package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client is the shared Redis connection, used for SSO exchange tokens
// and purge statistics counters
var Client *redis.Client

// pingTimeout bounds the startup connectivity check
const pingTimeout = 5 * time.Second

// InitRedis connects to Redis and verifies the connection
func InitRedis(addr, password string, db int) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	Client = rdb
	log.Println("✓ Redis connected successfully")
	return nil
}

// SetClient replaces the shared client (tests)
func SetClient(rdb *redis.Client) {
	Client = rdb
}

// Close closes the Redis connection
func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}

// Package cache holds the optional redis layer. Everything degrades
// gracefully when redis is unreachable: callers get a cache miss and read
// from the store instead.
package cache

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	packagesKey = "catalog:packages"
	packagesTTL = 10 * time.Minute
)

var client *redis.Client

// Init initializes the Redis connection
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetCachedPackages returns the serialized package catalog, if cached.
func GetCachedPackages(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, packagesKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CachePackages stores the serialized package catalog.
func CachePackages(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, packagesKey, data, packagesTTL)
}

// InvalidatePackages drops the cached catalog (after external catalog sync).
func InvalidatePackages(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, packagesKey)
}

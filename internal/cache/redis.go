package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys for the bed engine's read paths
const (
	LayoutKeyFmt       = "layout:room:%s"
	AvailabilityKeyFmt = "availability:room:%s"
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional; every
// helper below degrades to a no-op when Redis is unavailable.
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
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

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// GetCachedLayout returns the cached merged layout for a room
func GetCachedLayout(ctx context.Context, roomID string) ([]byte, bool) {
	return GetCached(ctx, fmt.Sprintf(LayoutKeyFmt, roomID))
}

// CacheLayout caches the merged layout for 5 minutes
func CacheLayout(ctx context.Context, roomID string, data []byte) {
	SetCached(ctx, fmt.Sprintf(LayoutKeyFmt, roomID), data, 5*time.Minute)
}

// GetCachedAvailability returns the cached availability summary for a room
func GetCachedAvailability(ctx context.Context, roomID string) ([]byte, bool) {
	return GetCached(ctx, fmt.Sprintf(AvailabilityKeyFmt, roomID))
}

// CacheAvailability caches the availability summary for 2 minutes
func CacheAvailability(ctx context.Context, roomID string, data []byte) {
	SetCached(ctx, fmt.Sprintf(AvailabilityKeyFmt, roomID), data, 2*time.Minute)
}

// InvalidateRoomCaches drops every cached view of a room.
// Called after any bed state change, layout sync or occupancy recompute.
func InvalidateRoomCaches(ctx context.Context, roomID string) {
	if client == nil {
		return
	}
	client.Del(ctx,
		fmt.Sprintf(LayoutKeyFmt, roomID),
		fmt.Sprintf(AvailabilityKeyFmt, roomID),
	)
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

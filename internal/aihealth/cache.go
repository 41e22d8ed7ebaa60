package aihealth

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheTTL bounds how long a verdict snapshot is served from Redis before a
// caller re-scans the filesystem.
const CacheTTL = 5 * time.Second

// Cache is an optional Redis-backed layer in front of Service, so repeated
// dashboard polls don't re-stat the heartbeat directory on every call. A
// cache miss or Redis error always falls back to a live scan; Redis is
// never a hard dependency.
type Cache struct {
	redis   *redis.Client
	service *Service
}

// NewCache wraps service with a Redis cache. redis must not be nil.
func NewCache(redisClient *redis.Client, service *Service) *Cache {
	return &Cache{redis: redisClient, service: service}
}

func systemHealthKey() string { return "aihealth:system:latest" }

// GetSystemHealth returns the cached verdict if fresh, otherwise scans live
// and repopulates the cache.
func (c *Cache) GetSystemHealth(ctx context.Context) []ModelHealth {
	raw, err := c.redis.Get(ctx, systemHealthKey()).Result()
	if err == nil {
		var cached []ModelHealth
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached
		}
	}

	health := c.service.GetSystemHealth()
	c.store(ctx, systemHealthKey(), health)
	return health
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[AIHealth] cache marshal failed: %v", err)
		return
	}
	if err := c.redis.Set(ctx, key, data, CacheTTL).Err(); err != nil {
		log.Printf("[AIHealth] cache write failed: %v", err)
	}
}

func cameraMetricsKey() string { return "aihealth:cameras:latest" }

// GetCameraMetrics returns the cached per-camera snapshot if fresh,
// otherwise reads live from the agent registry (when colocated) and
// repopulates the cache.
func (c *Cache) GetCameraMetrics(ctx context.Context) []CameraMetrics {
	raw, err := c.redis.Get(ctx, cameraMetricsKey()).Result()
	if err == nil {
		var cached []CameraMetrics
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached
		}
	}

	metrics := c.service.GetCameraMetrics()
	c.store(ctx, cameraMetricsKey(), metrics)
	return metrics
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ---------------------------------------------------------------------------
// Synthesis result cache.
// Synthesis is deterministic for a saved voice at fixed text/speed/language,
// so repeated requests can be served from Redis instead of re-running
// inference. The cache is optional; services run without it when no Redis
// URL is configured.
// ---------------------------------------------------------------------------

const keyPrefix = "synth:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Key derives the cache key for one synthesis request. Saved voices are
// immutable under a name until overwritten, so the name stands in for the
// full reference material.
func Key(model, voice, text, language string, speed float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%.4f", model, voice, text, language, speed)
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached audio for key, or nil on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}
	return data, nil
}

// Set stores synthesized audio under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, audio []byte) error {
	if err := c.client.Set(ctx, key, audio, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

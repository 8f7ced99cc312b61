// Package cache short-circuits cmd/server requests that repeat a
// configuration it has already solved, keyed by a hash of the normalised
// config JSON plus the seed.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusplan/timetable/internal/engine"
)

// Cache wraps a redis client.
type Cache struct {
	rdb *redis.Client
}

// New builds a Cache from connection settings.
func New(addr, password string, db int) *Cache {
	return &Cache{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Key hashes a config plus seed into a stable cache key.
func Key(cfg engine.Config, seed uint64) (string, error) {
	payload, err := json.Marshal(struct {
		Config engine.Config
		Seed   uint64
	}{cfg, seed})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return "timetable:result:" + hex.EncodeToString(sum[:]), nil
}

// Get returns a cached Result, and whether it was found.
func (c *Cache) Get(ctx context.Context, key string) (*engine.Result, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var result engine.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

// Set stores a Result under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, result engine.Result, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Close releases the underlying redis connection pool.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

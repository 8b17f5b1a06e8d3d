// Package cache wraps reads in a get-or-compute-and-store policy against a
// Badger key-value store with TTL expiry. The cache is purely an
// optimization: when disabled or unavailable every lookup degrades to a
// plain compute and the caller still gets a correct value.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surftimer-api/internal/config"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type Cache struct {
	db         *badger.DB
	enabled    bool
	defaultTTL time.Duration
	logger     zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) (*Cache, error) {
	if !cfg.CacheEnabled {
		logger.Info().Msg("cache disabled, all reads go to the database")
		return &Cache{enabled: false, logger: logger}, nil
	}

	opts := badger.DefaultOptions(cfg.CachePath).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	logger.Info().Str("path", cfg.CachePath).Dur("ttl", cfg.CacheTTL).Msg("cache store opened")
	return &Cache{db: db, enabled: true, defaultTTL: cfg.CacheTTL, logger: logger}, nil
}

// NewInMemory returns an enabled cache backed by an in-memory Badger
// instance. Used by tests.
func NewInMemory(logger zerolog.Logger) (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, enabled: true, defaultTTL: time.Minute, logger: logger}, nil
}

// NewDisabled returns a cache that never stores anything.
func NewDisabled(logger zerolog.Logger) *Cache {
	return &Cache{enabled: false, logger: logger}
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// get fetches the raw bytes stored under key. A miss returns (nil, false).
func (c *Cache) get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		return nil, false
	}
	return data, true
}

// set stores data under key with the given TTL. Failures are logged and
// swallowed; a failed store never fails the request.
func (c *Cache) set(key string, data []byte, ttl time.Duration) {
	if !c.enabled {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data).WithTTL(ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// DeletePrefix drops every entry whose key starts with prefix. Called after
// writes so stale composites disappear before their TTL.
func (c *Cache) DeletePrefix(prefix string) {
	if !c.enabled {
		return
	}
	if err := c.db.DropPrefix([]byte(prefix)); err != nil {
		c.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
	}
}

// GetOrCompute looks up key and deserializes the stored value on a hit.
// On a miss it invokes compute, stores the JSON-encoded result under key
// with the given TTL and returns it. Values are cached as raw typed data;
// display formatting happens at the response boundary, so a hit and a miss
// are byte-identical after formatting. Any cache failure, including a
// corrupt stored entry, degrades to a miss.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	if data, ok := c.get(key); ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			c.logger.Debug().Str("key", key).Msg("cache hit")
			return cached, nil
		}
		c.logger.Warn().Str("key", key).Msg("corrupt cache entry, recomputing")
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}

	if c.enabled {
		data, err := json.Marshal(value)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode value for cache")
			return value, nil
		}
		c.set(key, data, ttl)
	}

	return value, nil
}

package pedigree

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
	"github.com/yoshikawa-river/keiba-features/pkg/logger"
)

const defaultTTL = 6 * time.Hour

// CachedProvider layers a Redis cache over another provider. Cache failures
// degrade to the inner provider rather than failing the lookup; pedigree
// data is reference data and a stale or missing cache entry is harmless.
type CachedProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// CacheOption configures a CachedProvider.
type CacheOption func(*CachedProvider)

// WithTTL sets the cache entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedProvider) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the provider's logger.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachedProvider) {
		c.log = l
	}
}

// NewCachedProvider wraps inner with a Redis cache.
func NewCachedProvider(inner Provider, client *redis.Client, opts ...CacheOption) (*CachedProvider, error) {
	if inner == nil {
		return nil, ErrNilInner
	}
	if client == nil {
		return nil, ErrNilClient
	}
	c := &CachedProvider{
		inner:  inner,
		client: client,
		ttl:    defaultTTL,
		log:    logger.Named("pedigree.cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func horseKey(id model.HorseID) string { return "pedigree:horse:" + string(id) }
func sireKey(id string) string         { return "pedigree:sire:" + id }

// Pedigree serves from cache when possible, falling back to the inner
// provider and writing the result back.
func (c *CachedProvider) Pedigree(ctx context.Context, id model.HorseID) (*model.PedigreeRecord, error) {
	var rec model.PedigreeRecord
	if ok := c.get(ctx, horseKey(id), &rec); ok {
		return &rec, nil
	}
	fresh, err := c.inner.Pedigree(ctx, id)
	if err != nil {
		return nil, err
	}
	if fresh != nil {
		c.set(ctx, horseKey(id), fresh)
	}
	return fresh, nil
}

// SireStats serves progeny aggregates through the same cache.
func (c *CachedProvider) SireStats(ctx context.Context, sireID string) (*model.SireStats, error) {
	var st model.SireStats
	if ok := c.get(ctx, sireKey(sireID), &st); ok {
		return &st, nil
	}
	fresh, err := c.inner.SireStats(ctx, sireID)
	if err != nil {
		return nil, err
	}
	if fresh != nil {
		c.set(ctx, sireKey(sireID), fresh)
	}
	return fresh, nil
}

func (c *CachedProvider) get(ctx context.Context, key string, out any) bool {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn(ctx, "cache read failed", logger.String("key", key), logger.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		c.log.Warn(ctx, "cache entry corrupt", logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

func (c *CachedProvider) set(ctx context.Context, key string, val any) {
	b, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.log.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(err))
	}
}

var _ Provider = (*CachedProvider)(nil)

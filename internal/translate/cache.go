package translate

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"
)

const cacheKeyPrefix = "lingo:translation:"

// Cache stores resolved translations between runs.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedResolver serves translations from a cache and fills it from next.
// Cache failures are logged and never fail a lookup.
type CachedResolver struct {
	next  Resolver
	cache Cache
	ttl   time.Duration
}

// NewCachedResolver wraps next with cache. A zero ttl keeps entries forever.
func NewCachedResolver(next Resolver, cache Cache, ttl time.Duration) *CachedResolver {
	return &CachedResolver{next: next, cache: cache, ttl: ttl}
}

func (r *CachedResolver) Resolve(ctx context.Context, text, locale string) (string, bool, error) {
	key := CacheKey(text, locale)

	cached, ok, err := r.cache.Get(ctx, key)
	switch {
	case err != nil:
		slog.Warn("translation cache read failed", "locale", locale, "error", err)
	case ok:
		return cached, true, nil
	}

	translation, ok, err := r.next.Resolve(ctx, text, locale)
	if err != nil || !ok {
		return translation, ok, err
	}

	if err := r.cache.Set(ctx, key, translation, r.ttl); err != nil {
		slog.Warn("translation cache write failed", "locale", locale, "error", err)
	}
	return translation, true, nil
}

// CacheKey derives the cache key for text in locale.
func CacheKey(text, locale string) string {
	sum := blake2b.Sum256([]byte(normalizeKey(text)))
	return cacheKeyPrefix + locale + ":" + hex.EncodeToString(sum[:])
}

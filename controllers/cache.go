package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nadifalfairuz/digistore/config"
	"github.com/nadifalfairuz/digistore/utils"
)

const (
	catalogCachePrefix = "digistore:catalog:"
	catalogCacheTTL    = 10 * time.Minute
)

// cacheGet loads a cached JSON value into dest. Returns false on miss or
// when Redis is not configured; callers fall through to the database.
func cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if config.Redis == nil {
		return false
	}
	raw, err := config.Redis.Get(ctx, catalogCachePrefix+key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		utils.LogError("Corrupt cache entry for %s: %v", key, err)
		config.Redis.Del(ctx, catalogCachePrefix+key)
		return false
	}
	return true
}

// cacheSet stores a JSON value under the catalog prefix. Failures are
// logged and ignored; the cache is an accelerator, not a dependency.
func cacheSet(ctx context.Context, key string, value interface{}) {
	if config.Redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		utils.LogError("Failed to marshal cache entry %s: %v", key, err)
		return
	}
	if err := config.Redis.Set(ctx, catalogCachePrefix+key, raw, catalogCacheTTL).Err(); err != nil {
		utils.LogDebug("Cache set failed for %s: %v", key, err)
	}
}

// invalidateCatalogCache drops all cached catalog responses. Called after
// any write that changes product, banner, or bundle data, including stock
// mutations during checkout.
func invalidateCatalogCache() {
	if config.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	iter := config.Redis.Scan(ctx, 0, catalogCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		utils.LogError("Catalog cache scan failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := config.Redis.Del(ctx, keys...).Err(); err != nil {
		utils.LogError("Catalog cache invalidation failed: %v", err)
		return
	}
	utils.LogDebug("Invalidated %d catalog cache entries", len(keys))
}

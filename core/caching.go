package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// currentCacheVersion defines the version of the cached patent list format
const currentCacheVersion = 1

// cacheDateLayout matches the date granularity of the upstream search.
const cacheDateLayout = "20060102"

// cachedSearch returns the patents of one query, served from the cache when a fresh
// entry of the current version exists.
func cachedSearch(ctx context.Context, cfg *contract.Config, source contract.PatentSource, store contract.CacheStore, query string, start, end, now time.Time) ([]schema.Patent, error) {
	if store == nil || cfg.InputFile != "" {
		// Fallback to direct fetch
		return source.SearchPatents(ctx, query, start, end, cfg.MaxPages)
	}

	key := generateCacheKey(query, start, end, cfg.MaxPages)
	m := metricsFromContext(ctx)

	// Check for cache hit
	if result, ok := checkCacheHit(store, key, cfg.CacheTTL, now); ok {
		if m != nil {
			m.CacheLookup(true)
		}
		contract.Logger().Debug("cache hit for " + query)
		return result, nil
	}
	if m != nil {
		m.CacheLookup(false)
	}

	// Cache miss: fetch and store
	return fetchAndStore(ctx, cfg, source, store, key, query, start, end, now)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, ttl time.Duration, now time.Time) ([]schema.Patent, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil, false // Cache miss
	}
	if version != currentCacheVersion {
		return nil, false
	}
	if now.Sub(time.Unix(ts, 0)) > ttl {
		return nil, false
	}
	var result []schema.Patent
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return result, true
}

// fetchAndStore fetches from the source and stores the result in cache
func fetchAndStore(ctx context.Context, cfg *contract.Config, source contract.PatentSource, store contract.CacheStore, key, query string, start, end, now time.Time) ([]schema.Patent, error) {
	result, err := source.SearchPatents(ctx, query, start, end, cfg.MaxPages)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []schema.Patent{}
	}
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, now.Unix()); err != nil {
			contract.LogWarn("Failed to write cache entry for "+query, err)
		}
	}
	return result, nil
}

// generateCacheKey creates a unique key based on the search parameters
func generateCacheKey(query string, start, end time.Time, maxPages int) string {
	key := fmt.Sprintf("%s|%s|%s|%d",
		query,
		start.Format(cacheDateLayout),
		end.Format(cacheDateLayout),
		maxPages,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

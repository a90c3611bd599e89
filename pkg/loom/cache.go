package loom

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultCleanupInterval = 30 * time.Minute

// CacheConfig contains configuration options for the template cache
type CacheConfig struct {
	// MaxSize is the maximum number of templates to cache. Zero or
	// negative disables caching.
	MaxSize int
	// TTL is the time-to-live for cached templates. 0 means no expiration.
	TTL time.Duration
}

// TemplateCache caches loaded template text keyed by file path.
type TemplateCache struct {
	config CacheConfig
	cache  *gocache.Cache
}

// NewTemplateCache creates a template cache sized per the engine config
func NewTemplateCache(config *Config) *TemplateCache {
	if config == nil {
		config = DefaultConfig()
	}
	return NewTemplateCacheWithConfig(CacheConfig{
		MaxSize: config.CacheMaxSize,
		TTL:     config.CacheTTL,
	})
}

// NewTemplateCacheWithConfig creates a template cache with the given
// configuration. A MaxSize of zero or less leaves the cache disabled.
func NewTemplateCacheWithConfig(config CacheConfig) *TemplateCache {
	tc := &TemplateCache{config: config}
	if config.MaxSize <= 0 {
		return tc
	}

	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if config.TTL > 0 {
		expiration = config.TTL
		cleanup = defaultCleanupInterval
	}
	tc.cache = gocache.New(expiration, cleanup)
	return tc
}

// Get retrieves cached template text
func (tc *TemplateCache) Get(key string) (string, bool) {
	if tc.cache == nil {
		return "", false
	}
	value, found := tc.cache.Get(key)
	if !found {
		return "", false
	}
	text, ok := value.(string)
	if !ok {
		return "", false
	}
	return text, true
}

// Set stores template text. At capacity new entries are dropped until an
// entry expires or the cache is cleared.
func (tc *TemplateCache) Set(key, text string) {
	if tc.cache == nil {
		return
	}
	if _, exists := tc.cache.Get(key); !exists && tc.cache.ItemCount() >= tc.config.MaxSize {
		return
	}
	tc.cache.Set(key, text, gocache.DefaultExpiration)
}

// Remove removes one entry from the cache
func (tc *TemplateCache) Remove(key string) {
	if tc.cache == nil {
		return
	}
	tc.cache.Delete(key)
}

// Clear removes all entries from the cache
func (tc *TemplateCache) Clear() {
	if tc.cache == nil {
		return
	}
	tc.cache.Flush()
}

// Size returns the current number of cached templates
func (tc *TemplateCache) Size() int {
	if tc.cache == nil {
		return 0
	}
	return tc.cache.ItemCount()
}

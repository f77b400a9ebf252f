package xresource

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// maxCacheSize 缓存最大条目数上限。
const maxCacheSize = 1 << 20

type cacheKey struct {
	uri  string
	base string
}

// CachedEndpoint 带 LRU 缓存的分类器，并发安全。
type CachedEndpoint struct {
	inner EndpointConfig
	cache *lru.Cache[cacheKey, bool]
}

// NewCachedEndpoint 创建带缓存的分类器。size 超过上限时截断。
func NewCachedEndpoint(inner EndpointConfig, size int) (*CachedEndpoint, error) {
	if inner == nil {
		return nil, ErrNilEndpoint
	}
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	size = min(size, maxCacheSize)
	cache, err := lru.New[cacheKey, bool](size)
	if err != nil {
		return nil, err
	}
	return &CachedEndpoint{inner: inner, cache: cache}, nil
}

// IsResourceRequest 实现 EndpointConfig。
func (c *CachedEndpoint) IsResourceRequest(uri, baseURI string) bool {
	key := cacheKey{uri: uri, base: baseURI}
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := c.inner.IsResourceRequest(uri, baseURI)
	c.cache.Add(key, v)
	return v
}

// Len 返回缓存条目数。
func (c *CachedEndpoint) Len() int { return c.cache.Len() }

// Purge 清空缓存。
func (c *CachedEndpoint) Purge() { c.cache.Purge() }

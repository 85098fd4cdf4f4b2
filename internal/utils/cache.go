package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache is a bounded LRU whose entries carry their own expiry.
type Cache[V any] struct {
	lruCache *lru.Cache[string, CacheItem[V]]
	now      func() time.Time
}

// NewCache 创建一个容量为 size 的 LRU 缓存
func NewCache[V any](size int) (*Cache[V], error) {
	l, err := lru.New[string, CacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lruCache: l, now: time.Now}, nil
}

// SetClock replaces the time source; used by tests.
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.now = now
}

// Set stores data until expiresAt.
func (c *Cache[V]) Set(key string, data V, expiresAt time.Time) {
	c.lruCache.Add(key, CacheItem[V]{
		Data:      data,
		ExpiresAt: expiresAt,
	})
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *Cache[V]) Get(key string) (V, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	// 检查过期
	if !c.now().Before(val.ExpiresAt) {
		c.lruCache.Remove(key)
		var zero V
		return zero, false
	}

	return val.Data, true
}

// Delete 删除指定缓存
func (c *Cache[V]) Delete(key string) {
	c.lruCache.Remove(key)
}

// Len reports the number of live and not-yet-evicted entries.
func (c *Cache[V]) Len() int {
	return c.lruCache.Len()
}

package util

import (
	"sync"
	"time"
)

type cacheKey interface{ uint32 | ~string }

type cacheEntry[V any] struct {
	timer *time.Timer
	value V
	gen   uint64
}

// LRWCache keeps at most maxSize entries, each for ttl after it was last
// written. When full, the least recently written entry is evicted.
type LRWCache[K cacheKey, V any] struct {
	ttl     time.Duration
	maxSize int
	order   []K
	data    map[K]*cacheEntry[V]
	gen     uint64
	mu      sync.Mutex
}

func NewLRWCache[K cacheKey, V any](ttl time.Duration, maxSize int) *LRWCache[K, V] {
	return &LRWCache[K, V]{
		ttl:     ttl,
		maxSize: maxSize,
		order:   make([]K, 0, maxSize),
		data:    make(map[K]*cacheEntry[V], maxSize),
	}
}

func (c *LRWCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delete(key)
	for len(c.order) >= c.maxSize && len(c.order) > 0 {
		c.delete(c.order[0])
	}
	c.gen++
	gen := c.gen
	c.data[key] = &cacheEntry[V]{
		timer: time.AfterFunc(c.ttl, func() {
			c.expire(key, gen)
		}),
		value: value,
		gen:   gen,
	}
	c.order = append(c.order, key)
}

func (c *LRWCache[K, V]) Get(key K) (value V, exists bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, exists := c.data[key]
	if exists {
		value = entry.value
	}
	return
}

func (c *LRWCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func (c *LRWCache[K, V]) expire(key K, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	if ok && entry.gen == gen {
		c.delete(key)
	}
}

func (c *LRWCache[K, V]) delete(key K) {
	entry, ok := c.data[key]
	if !ok {
		return
	}
	entry.timer.Stop()
	delete(c.data, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

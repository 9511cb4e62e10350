package cache

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"time"
)

type memoryItem struct {
	key      string
	value    []byte
	expireAt time.Time
}

// MemoryCache is an in-process LRU with per-entry expiry.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front is most recently used
	cfg   MemoryConfig
}

var _ Service = (*MemoryCache)(nil)

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := MemoryConfig{MaxSize: 1000, DefaultTTL: 15 * time.Minute, Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MemoryCache{
		items: make(map[string]*list.Element),
		order: list.New(),
		cfg:   cfg,
	}
}

func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	el, ok := mc.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	item := el.Value.(*memoryItem)
	if !mc.cfg.Now().Before(item.expireAt) {
		mc.removeElement(el)
		return nil, ErrCacheMiss
	}
	mc.order.MoveToFront(el)
	return slices.Clone(item.value), nil
}

func (mc *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = mc.cfg.DefaultTTL
	}
	item := &memoryItem{key: key, value: slices.Clone(value), expireAt: mc.cfg.Now().Add(expiration)}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, ok := mc.items[key]; ok {
		el.Value = item
		mc.order.MoveToFront(el)
		return nil
	}
	mc.items[key] = mc.order.PushFront(item)
	for mc.order.Len() > mc.cfg.MaxSize {
		mc.removeElement(mc.order.Back())
	}
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		if el, ok := mc.items[key]; ok {
			mc.removeElement(el)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.order.Len()
}

func (mc *MemoryCache) Close() error { return nil }

func (mc *MemoryCache) removeElement(el *list.Element) {
	mc.order.Remove(el)
	delete(mc.items, el.Value.(*memoryItem).key)
}

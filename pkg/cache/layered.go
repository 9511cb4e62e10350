package cache

import (
	"context"
	"errors"
	"time"
)

// HitObserver is told which layer answered a lookup.
type HitObserver func(layer string, hit bool)

// LayeredCache reads memory first, then the remote layer, and backfills memory.
type LayeredCache struct {
	local   *MemoryCache
	remote  Service
	observe HitObserver
}

var _ Service = (*LayeredCache)(nil)

// NewLayeredCache stacks local over remote. remote may be nil for memory only.
func NewLayeredCache(local *MemoryCache, remote Service, observe HitObserver) *LayeredCache {
	if observe == nil {
		observe = func(string, bool) {}
	}
	return &LayeredCache{local: local, remote: remote, observe: observe}
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := lc.local.Get(ctx, key); err == nil {
		lc.observe("memory", true)
		return b, nil
	}
	lc.observe("memory", false)
	if lc.remote == nil {
		return nil, ErrCacheMiss
	}

	b, err := lc.remote.Get(ctx, key)
	lc.observe("redis", err == nil)
	if err != nil {
		return nil, err
	}
	_ = lc.local.Set(ctx, key, b, 0)
	return b, nil
}

// Set writes through to both layers. The local write always happens.
func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	_ = lc.local.Set(ctx, key, value, expiration)
	if lc.remote == nil {
		return nil
	}
	return lc.remote.Set(ctx, key, value, expiration)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.local.Delete(ctx, keys...)
	if lc.remote == nil {
		return nil
	}
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) Close() error {
	var errs []error
	errs = append(errs, lc.local.Close())
	if lc.remote != nil {
		errs = append(errs, lc.remote.Close())
	}
	return errors.Join(errs...)
}

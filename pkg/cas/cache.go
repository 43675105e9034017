package cas

import (
	"context"
	"time"

	"github.com/maypok86/otter"
	"golang.org/x/sync/singleflight"

	"github.com/docbay/contentstore/pkg/blob"
)

// NewCachedStore wraps store with an in-memory read-through cache. Stored
// objects are immutable, so cached payloads can never go stale; the TTL only
// bounds memory held for cold references. Writes pass straight through.
func NewCachedStore(store *Store, capacity int, ttl time.Duration) (*CachedStore, error) {
	cache, err := otter.MustBuilder[string, []byte](capacity).
		Cost(func(_ string, payload []byte) uint32 {
			return uint32(min(len(payload), 1<<31-1)) + 1
		}).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, err
	}
	return &CachedStore{store: store, cache: cache}, nil
}

// CachedStore is a Store with payload reads served from memory when
// possible. Concurrent cache misses for the same object collapse into a
// single backend read.
type CachedStore struct {
	store     *Store
	cache     otter.Cache[string, []byte]
	loadGroup singleflight.Group
}

// Put stores payload through the underlying store and primes the cache.
func (c *CachedStore) Put(ctx context.Context, payload []byte, contentType, extension string, opts ...PutOption) (Reference, error) {
	ref, err := c.store.Put(ctx, payload, contentType, extension, opts...)
	if err != nil {
		return Reference{}, err
	}
	c.cache.Set(c.cacheKey(ref), cloneBytes(payload))
	return ref, nil
}

// Get returns the bytes for ref, from cache when present.
func (c *CachedStore) Get(ctx context.Context, ref Reference) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	key := c.cacheKey(ref)
	if payload, ok := c.cache.Get(key); ok {
		return cloneBytes(payload), nil
	}
	loaded, err, _ := c.loadGroup.Do(key, func() (any, error) {
		payload, err := c.store.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, payload)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneBytes(loaded.([]byte)), nil
}

// Stat delegates to the underlying store.
func (c *CachedStore) Stat(ctx context.Context, ref Reference) (blob.ObjectInfo, error) {
	return c.store.Stat(ctx, ref)
}

// Exists delegates to the underlying store.
func (c *CachedStore) Exists(ctx context.Context, ref Reference) (bool, error) {
	return c.store.Exists(ctx, ref)
}

func (c *CachedStore) cacheKey(ref Reference) string {
	return ref.Bucket + "/" + ref.Key()
}

func cloneBytes(payload []byte) []byte {
	cloned := make([]byte, len(payload))
	copy(cloned, payload)
	return cloned
}

package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache with per-entry expiry.
type Memory struct {
	items *gocache.Cache
}

// NewMemory creates a memory cache. Entries expire after ttl; a ttl <= 0 keeps them forever.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		return &Memory{items: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Memory{items: gocache.New(ttl, 2*ttl)}
}

// Get implements Cache.
func (m *Memory) Get(ctx context.Context, key string) (*Entry, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	e, ok := v.(*Entry)
	if !ok {
		return nil, false, nil
	}
	return cloneEntry(e), true, nil
}

// Set implements Cache.
func (m *Memory) Set(ctx context.Context, key string, entry *Entry) error {
	m.items.SetDefault(key, cloneEntry(entry))
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *Memory) Len() int {
	return m.items.ItemCount()
}

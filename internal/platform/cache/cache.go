// Package cache stores short-lived generation results keyed by request
// fingerprint. Values are opaque bytes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the storage used to memoize recipe generation.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// GenerationKey fingerprints a generation request. Preferences are trimmed
// and lowercased; favorites are normalized, deduplicated and sorted so that
// their order does not matter.
func GenerationKey(preferences string, favorites []string) string {
	seen := make(map[string]struct{}, len(favorites))
	norm := make([]string, 0, len(favorites))
	for _, f := range favorites {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		norm = append(norm, f)
	}
	sort.Strings(norm)

	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(preferences))))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(norm, "\x1f")))
	return "generation:" + hex.EncodeToString(h.Sum(nil))
}

// MemoryCache is an in-process Cache backed by go-cache. Expired entries
// are evicted by a background janitor.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemory creates an empty in-process cache.
func NewMemory() *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// Get returns a copy of the stored value.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	value, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("cache entry %s has type %T", key, v)
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores value under key. A non-positive ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Close drops every entry.
func (m *MemoryCache) Close() error {
	m.items.Flush()
	return nil
}

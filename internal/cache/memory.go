package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/roamio/roamio-api/pkg/observability"
)

// Memory is the in-process backend, used by default and as the downgrade
// target when Redis is unreachable at startup.
type Memory struct {
	c *gocache.Cache
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-process store. defaultTTL applies when a caller
// passes a zero TTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	v, found := m.c.Get(key)
	if !found {
		observability.CacheMissesTotal.WithLabelValues(KeyPrefix(key)).Inc()
		return nil, false
	}
	observability.CacheHitsTotal.WithLabelValues(KeyPrefix(key)).Inc()
	b, ok := v.([]byte)
	return b, ok
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.c.Delete(key)
}

func (m *Memory) Health(context.Context) error { return nil }

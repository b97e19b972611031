package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemorySize = 256

// memoryCache is a size bounded LRU whose entries also expire after the TTL.
type memoryCache struct {
	pages *lru.LRU[string, []byte]
}

func newMemoryCache(opts Options) *memoryCache {
	size := opts.Size
	if size <= 0 {
		size = defaultMemorySize
	}

	var onEvict lru.EvictCallback[string, []byte]
	if opts.Name != "" {
		name := opts.Name
		onEvict = func(string, []byte) {
			EvictionsTotal.WithLabelValues(name).Inc()
		}
	}

	return &memoryCache{pages: lru.NewLRU(size, onEvict, opts.TTL)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.pages.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) {
	m.pages.Add(key, value)
}

func (m *memoryCache) Len(context.Context) int {
	return m.pages.Len()
}

func (m *memoryCache) Close() error {
	return nil
}

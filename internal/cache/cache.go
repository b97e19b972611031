// Package cache keeps recently fetched catalog pages so repeated listing and
// detail requests do not hit the source site every time.
//
// Only raw HTML of catalog, search and detail pages goes through here.
// Player pages, tokens, manifests and resolved links are never cached.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/nontonanime/api/internal/config"
)

// Cache stores page bodies by URL.
type Cache interface {
	// Get returns the stored body for key, or false when absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value for key, replacing any previous value.
	// Failures are logged and otherwise ignored.
	Set(ctx context.Context, key string, value []byte)

	// Len reports the number of live entries.
	Len(ctx context.Context) int

	// Close releases the backend connection, if any.
	Close() error
}

// Backend types accepted by New
const (
	TypeNone   = ""
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Options selects and sizes a cache backend.
type Options struct {
	Type string
	Size int
	TTL  time.Duration

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Name labels the cache metrics. Empty disables instrumentation.
	Name string
}

// OptionsFromConfig maps the cache section of the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Type:          cfg.Cache.Type,
		Size:          cfg.Cache.Size,
		TTL:           config.Duration("cache.ttl", cfg.Cache.TTL, 5*time.Minute),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Name:          "pages",
	}
}

// New creates the backend named by opts.Type. TypeNone yields a cache that never stores anything.
func New(opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)

	switch opts.Type {
	case TypeNone:
		return nopCache{}, nil
	case TypeMemory:
		c = newMemoryCache(opts)
	case TypeRedis:
		c, err = newRedisCache(opts)
	default:
		return nil, fmt.Errorf("cache: unknown type %q (want %q, %q or empty)", opts.Type, TypeMemory, TypeRedis)
	}
	if err != nil {
		return nil, err
	}

	if opts.Name != "" {
		c = newInstrumentedCache(c, opts.Name)
	}
	return c, nil
}

// Key derives a compact, fixed length key from a page URL.
func Key(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return fmt.Sprintf("page:%x", sum[:12])
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (nopCache) Set(context.Context, string, []byte)        {}
func (nopCache) Len(context.Context) int                    { return 0 }
func (nopCache) Close() error                               { return nil }

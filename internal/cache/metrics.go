package cache

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache metrics carry a "cache" label with Options.Name.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_hits_total",
			Help: "Total number of page cache hits.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_misses_total",
			Help: "Total number of page cache misses.",
		},
		[]string{"cache"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_evictions_total",
			Help: "Total number of pages evicted or expired from the in-memory cache.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal)
}

// entriesCollector reports the entry count at scrape time, since expiry happens outside the process for Redis.
type entriesCollector struct {
	desc *prometheus.Desc
	size func() int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.size()))
}

var (
	collectorsMu sync.Mutex
	collectors   = make(map[string]*entriesCollector)
	// registerer is swapped by tests for an isolated registry.
	registerer prometheus.Registerer = prometheus.DefaultRegisterer
)

// trackEntries registers the entries gauge for name, replacing a previous cache of the same name.
func trackEntries(name string, c Cache) *entriesCollector {
	collector := &entriesCollector{
		desc: prometheus.NewDesc("page_cache_entries", "Current number of cached pages.", nil, prometheus.Labels{"cache": name}),
		size: func() int { return c.Len(context.Background()) },
	}

	collectorsMu.Lock()
	defer collectorsMu.Unlock()
	if old, ok := collectors[name]; ok {
		registerer.Unregister(old)
	}
	collectors[name] = collector
	_ = registerer.Register(collector)
	return collector
}

// untrackEntries removes collector unless a newer cache has taken over its name.
func untrackEntries(name string, collector *entriesCollector) {
	collectorsMu.Lock()
	defer collectorsMu.Unlock()
	if collectors[name] == collector {
		registerer.Unregister(collector)
		delete(collectors, name)
	}
}

// instrumentedCache counts hits and misses of the wrapped cache.
type instrumentedCache struct {
	Cache
	name    string
	entries *entriesCollector
}

func newInstrumentedCache(inner Cache, name string) *instrumentedCache {
	return &instrumentedCache{Cache: inner, name: name, entries: trackEntries(name, inner)}
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok := c.Cache.Get(ctx, key)
	if ok {
		HitsTotal.WithLabelValues(c.name).Inc()
	} else {
		MissesTotal.WithLabelValues(c.name).Inc()
	}
	return value, ok
}

func (c *instrumentedCache) Close() error {
	untrackEntries(c.name, c.entries)
	return c.Cache.Close()
}

package tile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrain_tile_cache_hits_total",
		Help: "Tile lookups served from a resident slot.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrain_tile_cache_misses_total",
		Help: "Tile lookups that had to populate a slot.",
	})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrain_tile_cache_evictions_total",
		Help: "Misses that repurposed the least recently used slot.",
	})

	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrain_tile_cache_entries",
		Help: "Tiles currently resident in the cache.",
	})
)

func instrumentHit() {
	cacheHits.Inc()
}

func instrumentMiss(evicted bool) {
	cacheMisses.Inc()
	if evicted {
		cacheEvictions.Inc()
	}
}

func instrumentEntries(n int) {
	cacheEntries.Set(float64(n))
}

package terrain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	terrainNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrain_quadtree_nodes",
		Help: "Nodes allocated in the quadtree arena.",
	})

	terrainRendered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrain_quadtree_rendered_nodes",
		Help: "Nodes selected for rendering in the last frame.",
	})

	terrainSplits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrain_quadtree_splits_total",
		Help: "Nodes split into four children.",
	})

	terrainUpdateSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "terrain_quadtree_update_seconds",
		Help:    "Time spent in one refinement traversal, tile population included.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})
)

func instrumentFrame(stats FrameStats, seconds float64) {
	terrainNodes.Set(float64(stats.Nodes))
	terrainRendered.Set(float64(stats.Rendered))
	terrainSplits.Add(float64(stats.Splits))
	terrainUpdateSeconds.Observe(seconds)
}

// Package world assembles a terrain, its tile cache and its heightmap source
// from configuration.
package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// World is everything a frame loop needs to refine and draw terrain.
type World struct {
	Source  terrain.NoiseSource
	Pool    *tile.Pool
	Cache   *tile.Cache
	Terrain *terrain.Terrain
}

// New builds a world on backend. The root node is centered on the origin.
func New(cfg *config.Config, backend texture.Backend) (*World, error) {
	format, err := texture.ParseFormat(cfg.Pool.Format)
	if err != nil {
		return nil, fmt.Errorf("pool format: %w", err)
	}

	pool, err := tile.NewPool(backend, tile.PoolConfig{
		Capacity:   cfg.Pool.Capacity,
		Resolution: cfg.Terrain.TileResolution,
		Format:     format,
	})
	if err != nil {
		return nil, err
	}

	w := &World{
		Source: terrain.NoiseSource{
			Seed:       cfg.Noise.Seed,
			Octaves:    cfg.Noise.Octaves,
			Frequency:  cfg.Noise.Frequency,
			Lacunarity: cfg.Noise.Lacunarity,
			Gain:       cfg.Noise.Gain,
			Amplitude:  cfg.Noise.Amplitude,
		},
		Pool:  pool,
		Cache: tile.NewCache(pool),
	}

	w.Terrain, err = terrain.New(terrain.Config{
		Size:           cfg.Terrain.Size,
		MaxLOD:         cfg.Terrain.MaxLOD,
		Tau:            cfg.Terrain.Tau,
		RootError:      cfg.Terrain.RootError,
		TileResolution: cfg.Terrain.TileResolution,
	}, w.Source, w.Cache)
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("world ready",
		zap.Int64("seed", cfg.Noise.Seed),
		zap.Float32("amplitude", cfg.Noise.Amplitude),
		zap.Int("pool_capacity", pool.Capacity()),
	)
	return w, nil
}

// Height returns the source elevation at a world position.
func (w *World) Height(x, y float32) float32 {
	return w.Source.Height(x, y)
}

// Bounds returns the footprint of the root node.
func (w *World) Bounds() math.AABB {
	return w.Terrain.Node(w.Terrain.Root()).BBox
}

// Close releases the tile pool's texture array.
func (w *World) Close() {
	w.Cache.Purge()
	w.Pool.Close()
}

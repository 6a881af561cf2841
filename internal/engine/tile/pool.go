// Package tile manages GPU-resident heightmap tiles: a fixed pool of texture
// array slices and an LRU cache mapping quadtree tile keys onto them.
//
// Neither Pool nor Cache is safe for concurrent use; both are driven from the
// thread that runs the frame.
package tile

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// ErrZeroCapacity is returned when a pool is configured with no slots.
var ErrZeroCapacity = errors.New("tile pool capacity must be positive")

// Tile is one slice of the pool's texture array. Its identity never changes
// once the pool has created it.
type Tile struct {
	array texture.ArrayID
	slice int
	inUse bool
}

// Array returns the texture array that holds the tile.
func (t *Tile) Array() texture.ArrayID { return t.array }

// Slice returns the array layer index of the tile.
func (t *Tile) Slice() int { return t.slice }

// PoolConfig describes the texture array backing a pool.
type PoolConfig struct {
	Capacity   int            // Slot count, the array depth
	Resolution int            // Texels per tile edge
	Format     texture.Format // Texel format
}

// Pool hands out tiles from a single texture array. It never grows.
type Pool struct {
	backend    texture.Backend
	array      texture.ArrayID
	resolution int
	tiles      []Tile
	free       []*Tile // LIFO: the most recently released slot is reused first
}

// NewPool allocates the texture array through backend and creates one tile per slice.
func NewPool(backend texture.Backend, cfg PoolConfig) (*Pool, error) {
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("new tile pool: %w (got %d)", ErrZeroCapacity, cfg.Capacity)
	}
	if cfg.Resolution < 1 {
		return nil, fmt.Errorf("new tile pool: resolution must be positive, got %d", cfg.Resolution)
	}

	array, err := backend.CreateTextureArray(cfg.Format, 1, cfg.Resolution, cfg.Resolution, cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("new tile pool: create texture array: %w", err)
	}

	p := &Pool{
		backend:    backend,
		array:      array,
		resolution: cfg.Resolution,
		tiles:      make([]Tile, cfg.Capacity),
		free:       make([]*Tile, 0, cfg.Capacity),
	}
	// Push in reverse so slice 0 is handed out first.
	for i := cfg.Capacity - 1; i >= 0; i-- {
		p.tiles[i] = Tile{array: array, slice: i}
		p.free = append(p.free, &p.tiles[i])
	}

	logger.Debug("tile pool created",
		zap.Int("capacity", cfg.Capacity),
		zap.Int("resolution", cfg.Resolution),
		zap.Stringer("format", cfg.Format),
		zap.Uint32("array", uint32(array)),
	)
	return p, nil
}

// Acquire takes a free tile. It returns false when every slot is in use.
func (p *Pool) Acquire() (*Tile, bool) {
	n := len(p.free)
	if n == 0 {
		return nil, false
	}
	t := p.free[n-1]
	p.free = p.free[:n-1]
	t.inUse = true
	return t, true
}

// Release returns t to the free set. The caller must drop every other
// reference to it. Releasing a foreign or already free tile panics.
func (p *Pool) Release(t *Tile) {
	if t == nil {
		panic("tile: release of nil tile")
	}
	if !p.owns(t) {
		panic(fmt.Sprintf("tile: release of slice %d from array %d into pool of array %d", t.slice, t.array, p.array))
	}
	if !t.inUse {
		panic(fmt.Sprintf("tile: double release of slice %d", t.slice))
	}
	t.inUse = false
	p.free = append(p.free, t)
}

// Upload writes a full tile of texels into t's slice.
func (p *Pool) Upload(t *Tile, data []float32) error {
	if err := p.backend.UpdateSlice(p.array, t.slice, p.resolution, p.resolution, data); err != nil {
		return fmt.Errorf("upload tile slice %d: %w", t.slice, err)
	}
	return nil
}

// Close frees the texture array. The pool must not be used afterwards.
func (p *Pool) Close() {
	p.backend.DeleteTextureArray(p.array)
	p.free = nil
}

// Capacity returns the fixed number of slots.
func (p *Pool) Capacity() int { return len(p.tiles) }

// FreeCount returns the number of slots available to Acquire.
func (p *Pool) FreeCount() int { return len(p.free) }

// InUse returns the number of acquired slots.
func (p *Pool) InUse() int { return len(p.tiles) - len(p.free) }

// Array returns the texture array shared by every tile of the pool.
func (p *Pool) Array() texture.ArrayID { return p.array }

// Resolution returns the texels per tile edge.
func (p *Pool) Resolution() int { return p.resolution }

func (p *Pool) owns(t *Tile) bool {
	return t.array == p.array && t.slice >= 0 && t.slice < len(p.tiles) && t == &p.tiles[t.slice]
}

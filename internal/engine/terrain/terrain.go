package terrain

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// MaxLODLimit keeps tile coordinates within uint32.
const MaxLODLimit = 31

// ErrInvalidConfig is wrapped by every New validation failure.
var ErrInvalidConfig = errors.New("invalid terrain config")

// Config describes one terrain quadtree.
type Config struct {
	Center         math.Vec2 // Root footprint center
	Size           float32   // Root footprint edge length
	MaxLOD         uint8     // Deepest level a node may be split into
	Tau            float32   // Split when screen-space error reaches this many pixels
	RootError      float32   // Geometric error of the root node
	TileResolution int       // Heightmap samples per tile edge, must match the pool
}

// RenderItem is one node selected for drawing this frame.
type RenderItem struct {
	Node      NodeID
	Key       tile.Key
	Slice     int       // Texture array layer holding the node's heights
	Center    math.Vec2 // Footprint center
	Size      float32   // Footprint edge length
	Transform math.Mat4 // Maps the unit grid [-1,1]^2 onto the footprint
}

// FrameStats summarises the last Update.
type FrameStats struct {
	Visited  int   `json:"visited"`
	Rendered int   `json:"rendered"`
	Splits   int   `json:"splits"`
	MaxDepth uint8 `json:"max_depth"`
	Nodes    int   `json:"nodes"`
}

// Terrain is a quadtree over a square heightfield. Nodes live in an arena and
// are never freed; a coarser view simply stops descending into them.
// Terrain is not safe for concurrent use.
type Terrain struct {
	cfg    Config
	source Source
	cache  *tile.Cache
	log    *zap.Logger

	nodes []Node
	root  NodeID

	// Per-frame scratch, reused between updates.
	queue []NodeID
	items []RenderItem
	stats FrameStats

	overCapacity bool
}

// New creates a terrain with a single root node. cache supplies the tiles;
// its pool resolution must equal cfg.TileResolution.
func New(cfg Config, source Source, cache *tile.Cache) (*Terrain, error) {
	switch {
	case cfg.Size <= 0:
		return nil, fmt.Errorf("%w: size must be positive, got %v", ErrInvalidConfig, cfg.Size)
	case cfg.Tau <= 0:
		return nil, fmt.Errorf("%w: tau must be positive, got %v", ErrInvalidConfig, cfg.Tau)
	case cfg.RootError < 0:
		return nil, fmt.Errorf("%w: root error must not be negative, got %v", ErrInvalidConfig, cfg.RootError)
	case cfg.MaxLOD > MaxLODLimit:
		return nil, fmt.Errorf("%w: max lod %d exceeds %d", ErrInvalidConfig, cfg.MaxLOD, MaxLODLimit)
	case cfg.TileResolution < 2:
		return nil, fmt.Errorf("%w: tile resolution must be at least 2, got %d", ErrInvalidConfig, cfg.TileResolution)
	case source == nil || cache == nil:
		return nil, fmt.Errorf("%w: source and cache are required", ErrInvalidConfig)
	case cache.Pool().Resolution() != cfg.TileResolution:
		return nil, fmt.Errorf("%w: tile resolution %d does not match pool resolution %d",
			ErrInvalidConfig, cfg.TileResolution, cache.Pool().Resolution())
	}

	t := &Terrain{
		cfg:    cfg,
		source: source,
		cache:  cache,
		log:    logger.Named("terrain"),
	}
	t.root = t.addNode(Node{
		BBox:           math.NewAABB(cfg.Center, cfg.Size, 0, 0),
		Center:         cfg.Center,
		Size:           cfg.Size,
		GeometricError: cfg.RootError,
		Parent:         NoNode,
		Children:       noChildren,
	})

	t.log.Info("terrain created",
		zap.Float32("size", cfg.Size),
		zap.Uint8("max_lod", cfg.MaxLOD),
		zap.Float32("tau", cfg.Tau),
		zap.Float32("root_error", cfg.RootError),
		zap.Int("tile_resolution", cfg.TileResolution),
		zap.Int("pool_capacity", cache.Pool().Capacity()),
	)
	return t, nil
}

// Update refines the tree for viewer and returns the nodes to draw this
// frame. The returned slice is reused by the next Update.
//
// Nodes are visited breadth first. A node whose screen-space error is below
// tau, or that sits at the depth ceiling, is drawn with its own tile and its
// children (if any) are skipped. Any other node is split on first need and
// its four children are queued, so one frame can descend several levels.
func (t *Terrain) Update(v Viewer) []RenderItem {
	start := time.Now()

	t.items = t.items[:0]
	t.queue = append(t.queue[:0], t.root)
	t.stats = FrameStats{}

	for head := 0; head < len(t.queue); head++ {
		id := t.queue[head]
		n := &t.nodes[id]
		t.stats.Visited++
		t.stats.MaxDepth = max(t.stats.MaxDepth, n.LOD)

		rho := ScreenSpaceError(n.GeometricError, n.BBox.DistanceTo(v.Position), v)
		if rho < t.cfg.Tau || int(n.LOD)+1 > int(t.cfg.MaxLOD) {
			t.render(id)
			continue
		}

		if n.IsLeaf() {
			t.split(id)
		}
		t.queue = append(t.queue, t.nodes[id].Children[:]...)
	}

	t.stats.Rendered = len(t.items)
	t.stats.Nodes = len(t.nodes)
	t.checkCapacity()
	instrumentFrame(t.stats, time.Since(start).Seconds())
	return t.items
}

// checkCapacity warns once each time a frame starts drawing more nodes than
// the pool has slots. Items beyond capacity evicted tiles drawn earlier in the
// same frame, so those earlier items show the wrong heights.
func (t *Terrain) checkCapacity() {
	capacity := t.cache.Pool().Capacity()
	over := t.stats.Rendered > capacity
	if over && !t.overCapacity {
		t.log.Warn("frame needs more tiles than the pool holds",
			zap.Int("rendered", t.stats.Rendered),
			zap.Int("capacity", capacity),
		)
	}
	t.overCapacity = over
}

// render fetches the node's tile and records a draw for it.
func (t *Terrain) render(id NodeID) {
	n := &t.nodes[id]
	tl := t.cache.GetOrLoad(n.Key(), func(tl *tile.Tile) {
		t.populate(id, tl)
	})

	t.items = append(t.items, RenderItem{
		Node:      id,
		Key:       n.Key(),
		Slice:     tl.Slice(),
		Center:    n.Center,
		Size:      n.Size,
		Transform: math.Translate(n.Center.X, n.Center.Y, 0).Mul(math.Scale(n.Size/2, n.Size/2, 1)),
	})
}

// populate generates the node's heightmap into tl and tightens the node's
// elevation range. An upload failure means the pool and terrain disagree on
// the tile shape, which New rules out, so it panics.
func (t *Terrain) populate(id NodeID, tl *tile.Tile) {
	n := &t.nodes[id]
	hm := t.source.Generate(n.Center, n.Size, t.cfg.TileResolution)
	if err := t.cache.Pool().Upload(tl, hm.Samples); err != nil {
		panic(fmt.Errorf("terrain: populate %s: %w", n.Key(), err))
	}
	n.BBox = n.BBox.WithZRange(hm.ZMin, hm.ZMax)
	n.Populated = true
}

// split creates the four children of a leaf.
func (t *Terrain) split(id NodeID) {
	var children [4]NodeID
	for i := range children {
		// Copy the parent: addNode may grow the arena.
		parent := t.nodes[id]
		children[i] = t.addNode(childNode(&parent, id, i))
	}
	t.nodes[id].Children = children
	t.stats.Splits++

	if ce := t.log.Check(zap.DebugLevel, "node split"); ce != nil {
		n := &t.nodes[id]
		ce.Write(zap.Stringer("key", n.Key()), zap.Float32("size", n.Size), zap.Int("nodes", len(t.nodes)))
	}
}

func (t *Terrain) addNode(n Node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Root returns the root node's ID.
func (t *Terrain) Root() NodeID { return t.root }

// Node returns the node with the given ID. The pointer is invalidated by the
// next Update.
func (t *Terrain) Node(id NodeID) *Node { return &t.nodes[id] }

// NodeCount returns the number of nodes ever created.
func (t *Terrain) NodeCount() int { return len(t.nodes) }

// Items returns the render list produced by the last Update.
func (t *Terrain) Items() []RenderItem { return t.items }

// Stats returns the statistics of the last Update.
func (t *Terrain) Stats() FrameStats { return t.stats }

// Config returns the terrain configuration.
func (t *Terrain) Config() Config { return t.cfg }

// Cache returns the tile cache backing the terrain.
func (t *Terrain) Cache() *tile.Cache { return t.cache }

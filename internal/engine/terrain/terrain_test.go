package terrain

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// countingSource wraps a height function and counts Generate calls.
type countingSource struct {
	height SampleFunc
	calls  int
}

func (s *countingSource) Generate(center math.Vec2, size float32, resolution int) Heightmap {
	s.calls++
	return s.height.Generate(center, size, resolution)
}

func flat(x, y float32) float32 { return 0 }

func slope(x, y float32) float32 { return x * 0.01 }

const testResolution = 5

func testConfig(maxLOD uint8) Config {
	return Config{
		Size:           1024,
		MaxLOD:         maxLOD,
		Tau:            2,
		RootError:      64,
		TileResolution: testResolution,
	}
}

func newTestTerrain(t *testing.T, cfg Config, src Source, capacity int) (*Terrain, *texture.MemoryBackend) {
	t.Helper()
	backend := texture.NewMemoryBackend()
	pool, err := tile.NewPool(backend, tile.PoolConfig{Capacity: capacity, Resolution: testResolution})
	require.NoError(t, err)
	tr, err := New(cfg, src, tile.NewCache(pool))
	require.NoError(t, err)
	return tr, backend
}

// testViewer has tan(hfov/2) == 1 so rho == 500 * e / D.
func testViewer(pos math.Vec3) Viewer {
	return Viewer{Position: pos, HFOV: gomath.Pi / 2, ViewportWidth: 1000}
}

var (
	nearViewer = testViewer(math.Vec3{X: 0, Y: 0, Z: 100})
	farViewer  = testViewer(math.Vec3{X: 0, Y: 0, Z: 1e6})
)

func TestScreenSpaceError(t *testing.T) {
	v := testViewer(math.Vec3{})
	require.InDelta(t, 500.0, ScreenSpaceError(10, 10, v), 1e-3)
	require.InDelta(t, 5.0, ScreenSpaceError(10, 1000, v), 1e-4)
}

func TestScreenSpaceErrorZeroDistance(t *testing.T) {
	require.Zero(t, ScreenSpaceError(100, 0, testViewer(math.Vec3{})))
}

func TestScreenSpaceErrorMonotonic(t *testing.T) {
	v := testViewer(math.Vec3{})
	prev := float32(gomath.Inf(1))
	for d := float32(1); d < 100000; d *= 1.5 {
		rho := ScreenSpaceError(64, d, v)
		require.Less(t, rho, prev, "rho must strictly decrease with distance (d=%v)", d)
		prev = rho
	}
}

func TestNewValidation(t *testing.T) {
	backend := texture.NewMemoryBackend()
	pool, err := tile.NewPool(backend, tile.PoolConfig{Capacity: 4, Resolution: testResolution})
	require.NoError(t, err)
	cache := tile.NewCache(pool)
	src := SampleFunc(flat)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero size", func(c *Config) { c.Size = 0 }},
		{"zero tau", func(c *Config) { c.Tau = 0 }},
		{"negative error", func(c *Config) { c.RootError = -1 }},
		{"lod too deep", func(c *Config) { c.MaxLOD = MaxLODLimit + 1 }},
		{"resolution mismatch", func(c *Config) { c.TileResolution = testResolution + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(3)
			tt.mutate(&cfg)
			_, err := New(cfg, src, cache)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err = New(testConfig(3), nil, cache)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSplitDeterminism(t *testing.T) {
	tr, _ := newTestTerrain(t, testConfig(1), SampleFunc(flat), 8)
	tr.Update(nearViewer)

	root := tr.Node(tr.Root())
	require.False(t, root.IsLeaf())

	want := []struct {
		center math.Vec2
		tx, ty uint32
	}{
		{math.Vec2{X: -256, Y: -256}, 0, 0},
		{math.Vec2{X: 256, Y: -256}, 1, 0},
		{math.Vec2{X: -256, Y: 256}, 0, 1},
		{math.Vec2{X: 256, Y: 256}, 1, 1},
	}
	for i, id := range root.Children {
		child := tr.Node(id)
		require.Equal(t, want[i].center, child.Center, "child %d center", i)
		require.Equal(t, float32(512), child.Size)
		require.Equal(t, root.GeometricError/2, child.GeometricError)
		require.Equal(t, uint8(1), child.LOD)
		require.Equal(t, want[i].tx, child.TileX)
		require.Equal(t, want[i].ty, child.TileY)
		require.Equal(t, tr.Root(), child.Parent)
		require.True(t, child.IsLeaf())
		require.Equal(t, math.NewAABB(child.Center, 512, 0, 0), child.BBox)
	}
}

func TestUpdateDescendsSeveralLevelsInOneFrame(t *testing.T) {
	tr, _ := newTestTerrain(t, testConfig(2), SampleFunc(flat), 32)

	items := tr.Update(nearViewer)

	require.Equal(t, 1+4+16, tr.NodeCount())
	require.Len(t, items, 16)
	for _, it := range items {
		require.Equal(t, uint8(2), it.Key.LOD)
		require.Equal(t, float32(256), it.Size)
	}
	stats := tr.Stats()
	require.Equal(t, 21, stats.Visited)
	require.Equal(t, 5, stats.Splits)
	require.Equal(t, uint8(2), stats.MaxDepth)
	require.Equal(t, 16, tr.Cache().Len())
}

// observeLogs routes the global logger into memory for the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func TestFrameOverCapacity(t *testing.T) {
	logs := observeLogs(t)
	const capacity = 4
	tr, backend := newTestTerrain(t, testConfig(2), SampleFunc(slope), capacity)
	pool := tr.Cache().Pool()

	items := tr.Update(nearViewer)
	require.Len(t, items, 16)
	require.Equal(t, 16, tr.Stats().Rendered)
	require.LessOrEqual(t, tr.Cache().Len(), capacity)
	require.Zero(t, pool.FreeCount())

	// Later items reuse the slots of earlier ones within the same frame.
	slices := make(map[int][]tile.Key)
	for _, it := range items {
		slices[it.Slice] = append(slices[it.Slice], it.Key)
	}
	require.Len(t, slices, capacity)
	for _, keys := range slices {
		require.Len(t, keys, 4)
	}

	// Only the last items drawn are still resident, and their slices hold
	// their own heights.
	for _, it := range items[:12] {
		require.False(t, tr.Cache().Contains(it.Key), it.Key.String())
	}
	for _, it := range items[12:] {
		require.True(t, tr.Cache().Contains(it.Key), it.Key.String())
		want := SampleFunc(slope).Generate(it.Center, it.Size, testResolution)
		require.Equal(t, want.Samples, backend.Slice(pool.Array(), it.Slice))
	}

	warnings := func() int {
		return logs.FilterMessage("frame needs more tiles than the pool holds").Len()
	}
	require.Equal(t, 1, warnings())
	entry := logs.FilterMessage("frame needs more tiles than the pool holds").All()[0]
	require.Equal(t, zapcore.WarnLevel, entry.Level)
	require.Equal(t, int64(16), entry.ContextMap()["rendered"])
	require.Equal(t, int64(capacity), entry.ContextMap()["capacity"])

	// Staying over capacity does not repeat the warning.
	tr.Update(nearViewer)
	require.Equal(t, 1, warnings())
	require.LessOrEqual(t, tr.Cache().Len(), capacity)

	// Dropping back under capacity re-arms it.
	require.Len(t, tr.Update(farViewer), 1)
	require.Equal(t, 1, warnings())
	tr.Update(nearViewer)
	require.Equal(t, 2, warnings())
}

func TestMaxLODCeiling(t *testing.T) {
	tr, _ := newTestTerrain(t, testConfig(0), SampleFunc(flat), 4)

	items := tr.Update(nearViewer)
	require.Len(t, items, 1)
	require.Equal(t, tr.Root(), items[0].Node)
	require.Equal(t, 1, tr.NodeCount())
}

func TestRefineThenCoarsen(t *testing.T) {
	tr, _ := newTestTerrain(t, testConfig(3), SampleFunc(flat), 128)

	tr.Update(nearViewer)
	refined := tr.NodeCount()
	require.Greater(t, refined, 1)

	items := tr.Update(farViewer)
	require.Len(t, items, 1)
	require.Equal(t, tr.Root(), items[0].Node)
	require.Equal(t, 1, tr.Stats().Visited, "children must not be traversed")

	// Children are kept.
	require.Equal(t, refined, tr.NodeCount())
	require.False(t, tr.Node(tr.Root()).IsLeaf())
}

func TestViewerInsideBoxRendersAsIs(t *testing.T) {
	tr, _ := newTestTerrain(t, testConfig(4), SampleFunc(slope), 8)

	// Populate the root so its box has height.
	tr.Update(farViewer)
	root := tr.Node(tr.Root())
	require.Less(t, root.BBox.Min.Z, float32(0))

	items := tr.Update(testViewer(math.Vec3{X: 10, Y: 10, Z: 0}))
	require.Len(t, items, 1)
	require.Equal(t, tr.Root(), items[0].Node)
	require.Equal(t, 1, tr.NodeCount())
}

func TestPopulateSetsElevationRange(t *testing.T) {
	src := &countingSource{height: slope}
	tr, backend := newTestTerrain(t, testConfig(2), src, 4)

	items := tr.Update(farViewer)
	require.Equal(t, 1, src.calls)

	root := tr.Node(tr.Root())
	require.True(t, root.Populated)
	require.InDelta(t, -5.12, root.BBox.Min.Z, 1e-4)
	require.InDelta(t, 5.12, root.BBox.Max.Z, 1e-4)

	slice := backend.Slice(tr.Cache().Pool().Array(), items[0].Slice)
	require.Len(t, slice, testResolution*testResolution)
	require.InDelta(t, -5.12, slice[0], 1e-4)
	require.InDelta(t, 5.12, slice[testResolution-1], 1e-4)
}

func TestUpdateReusesCachedTiles(t *testing.T) {
	src := &countingSource{height: flat}
	tr, _ := newTestTerrain(t, testConfig(2), src, 32)

	tr.Update(nearViewer)
	first := src.calls
	require.Equal(t, 16, first)

	tr.Update(nearViewer)
	require.Equal(t, first, src.calls, "steady view must be served from the cache")
	require.Equal(t, uint64(16), tr.Cache().Stats().Hits)
}

func TestKeysUniqueAcrossTree(t *testing.T) {
	tr, _ := newTestTerrain(t, testConfig(6), SampleFunc(slope), 64)

	viewers := []Viewer{
		nearViewer,
		testViewer(math.Vec3{X: 400, Y: -300, Z: 20}),
		testViewer(math.Vec3{X: -500, Y: 500, Z: 5}),
		farViewer,
	}
	for _, v := range viewers {
		tr.Update(v)

		seen := make(map[tile.Key]NodeID, tr.NodeCount())
		for id := NodeID(0); int(id) < tr.NodeCount(); id++ {
			key := tr.Node(id).Key()
			prev, dup := seen[key]
			require.False(t, dup, "key %s shared by nodes %d and %d", key, prev, id)
			seen[key] = id
		}
		require.LessOrEqual(t, tr.Cache().Len(), tr.Cache().Pool().Capacity())
	}
}

func TestRenderItemTransform(t *testing.T) {
	tr, _ := newTestTerrain(t, testConfig(1), SampleFunc(flat), 8)
	items := tr.Update(nearViewer)
	require.Len(t, items, 4)

	for _, it := range items {
		n := tr.Node(it.Node)
		lo := it.Transform.TransformVec3(math.Vec3{X: -1, Y: -1})
		hi := it.Transform.TransformVec3(math.Vec3{X: 1, Y: 1})
		require.Equal(t, n.BBox.Min.X, lo.X)
		require.Equal(t, n.BBox.Min.Y, lo.Y)
		require.Equal(t, n.BBox.Max.X, hi.X)
		require.Equal(t, n.BBox.Max.Y, hi.Y)
		require.Equal(t, n.Key(), it.Key)
	}
}

package bench

import (
	"context"
	"io"
	gomath "math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
	"github.com/Faultbox/midgard-terrain/internal/world"
)

func newWorld(t *testing.T) (*config.Config, *world.World) {
	t.Helper()
	cfg := config.Default()
	cfg.Terrain.Size = 1024
	cfg.Terrain.MaxLOD = 4
	cfg.Terrain.TileResolution = 5
	cfg.Pool.Capacity = 512
	cfg.View.Width = 320
	cfg.View.Height = 240
	cfg.Bench.Frames = 40

	w, err := world.New(cfg, texture.NewMemoryBackend())
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return cfg, w
}

func TestRun(t *testing.T) {
	cfg, w := newWorld(t)

	report, err := Run(context.Background(), w, OptionsFromConfig(cfg, w))
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	require.NoError(t, err)

	require.Len(t, report.Frames, 40)
	for i, f := range report.Frames {
		require.Equal(t, i, f.Index)
		require.Positive(t, f.Terrain.Rendered)
		require.LessOrEqual(t, f.MaxLOD, cfg.Terrain.MaxLOD)
		require.LessOrEqual(t, f.MinLOD, f.MaxLOD)
	}

	s := report.Summary
	require.Equal(t, 40, s.Frames)
	require.Positive(t, s.Splits)
	require.Positive(t, s.MaxDepth)
	require.LessOrEqual(t, s.MaxDepth, cfg.Terrain.MaxLOD)
	require.Equal(t, w.Terrain.NodeCount(), s.Nodes)
	require.Zero(t, s.OverCapacity)
	require.Equal(t, w.Cache.Stats(), report.Cache)
	require.Same(t, cfg, report.Config)
	require.InDelta(t, 0.5, s.HitRate, 0.5)
}

func TestRunDefaultConfigFitsPool(t *testing.T) {
	if testing.Short() {
		t.Skip("generates full resolution tiles")
	}

	cfg := config.Default()
	cfg.Bench.Frames = 60
	w, err := world.New(cfg, texture.NewMemoryBackend())
	require.NoError(t, err)
	t.Cleanup(w.Close)

	report, err := Run(context.Background(), w, OptionsFromConfig(cfg, w))
	require.NoError(t, err)

	require.Zero(t, report.Summary.OverCapacity)
	require.LessOrEqual(t, report.Summary.MaxRendered, cfg.Pool.Capacity)
	require.Positive(t, report.Summary.Splits)
	for _, f := range report.Frames {
		require.LessOrEqual(t, f.Resident, cfg.Pool.Capacity)
	}
}

func TestRunDeterministic(t *testing.T) {
	cfg, w1 := newWorld(t)
	_, w2 := newWorld(t)

	r1, err := Run(context.Background(), w1, OptionsFromConfig(cfg, w1))
	require.NoError(t, err)
	r2, err := Run(context.Background(), w2, OptionsFromConfig(cfg, w2))
	require.NoError(t, err)

	require.NotEqual(t, r1.RunID, r2.RunID)
	for i := range r1.Frames {
		require.Equal(t, r1.Frames[i].Terrain, r2.Frames[i].Terrain)
		require.Equal(t, r1.Frames[i].Resident, r2.Frames[i].Resident)
	}
}

func TestRunCancelled(t *testing.T) {
	cfg, w := newWorld(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, w, OptionsFromConfig(cfg, w))
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, report.Frames)
	require.Zero(t, report.Summary.Frames)
}

func TestFlightDives(t *testing.T) {
	f := DefaultFlight(1000, func(x, y float32) float32 { return 7 })
	f.Dives = 1
	cam := camera.NewOrbitCamera(1)

	f.Apply(cam, 0, 11)
	require.InDelta(t, f.FarDist, cam.Distance, 1e-3)
	require.InDelta(t, f.Radius, cam.Center.X, 1e-3)
	require.Equal(t, float32(7), cam.Center.Z)

	f.Apply(cam, 5, 11)
	require.InDelta(t, f.NearDist, cam.Distance, 1e-3)
	require.InDelta(t, -f.Radius, cam.Center.X, 1e-2)

	f.Apply(cam, 10, 11)
	require.InDelta(t, f.FarDist, cam.Distance, 1e-3)
}

func TestFlightSingleFrame(t *testing.T) {
	f := DefaultFlight(1000, nil)
	cam := camera.NewOrbitCamera(1)
	f.Apply(cam, 0, 1)
	require.False(t, gomath.IsNaN(float64(cam.Distance)))
	require.InDelta(t, f.FarDist, cam.Distance, 1e-3)
}

func TestFinish(t *testing.T) {
	r := &Report{Frames: []Frame{
		{Duration: 2 * time.Millisecond, Terrain: terrain.FrameStats{Rendered: 3, Splits: 1, MaxDepth: 1, Nodes: 5}},
		{Duration: 4 * time.Millisecond, Terrain: terrain.FrameStats{Rendered: 9, Splits: 2, MaxDepth: 2, Nodes: 13}},
	}}
	r.Finish(tile.Stats{Hits: 3, Misses: 1}, 4)

	s := r.Summary
	require.Equal(t, 2, s.Frames)
	require.Equal(t, 9, s.MaxRendered)
	require.Equal(t, uint8(2), s.MaxDepth)
	require.Equal(t, 13, s.Nodes)
	require.Equal(t, 3, s.Splits)
	require.Equal(t, 1, s.OverCapacity)
	require.Equal(t, 0.75, s.HitRate)
	require.Equal(t, 3*time.Millisecond, s.MeanUpdate)
	require.Equal(t, 4*time.Millisecond, s.MaxUpdate)
}

func TestWriteFile(t *testing.T) {
	r := &Report{
		RunID:  uuid.NewString(),
		Frames: []Frame{{Index: 0, Terrain: terrain.FrameStats{Rendered: 1, Nodes: 1}}},
	}
	r.Finish(tile.Stats{Misses: 1}, 8)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, r.RunID, decoded["run_id"])
	require.Contains(t, decoded, "summary")
	require.Len(t, decoded["frames"], 1)
}

func TestMetricsHandler(t *testing.T) {
	srv := httptest.NewServer(MetricsHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "terrain_quadtree_nodes")
	require.Contains(t, string(body), "terrain_tile_cache_hits_total")

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)
}

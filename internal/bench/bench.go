// Package bench drives a terrain headlessly along a scripted flight and
// records what each frame refined, drew and loaded.
package bench

import (
	"context"
	gomath "math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/internal/world"
)

// Options controls a run.
type Options struct {
	Frames int
	Width  int // Viewport width in pixels
	Height int // Viewport height in pixels
	FOVY   float32
	Flight Flight
	Config *config.Config // Recorded in the report when set
}

// OptionsFromConfig builds run options for w from cfg.
func OptionsFromConfig(cfg *config.Config, w *world.World) Options {
	return Options{
		Frames: cfg.Bench.Frames,
		Width:  cfg.View.Width,
		Height: cfg.View.Height,
		FOVY:   cfg.View.FOVDegrees * gomath.Pi / 180,
		Flight: DefaultFlight(cfg.Terrain.Size, w.Height),
		Config: cfg,
	}
}

// Run flies the camera for opts.Frames frames, updating the terrain once per
// frame. When ctx is cancelled the frames recorded so far are returned with
// ctx.Err().
func Run(ctx context.Context, w *world.World, opts Options) (*Report, error) {
	log := logger.Named("bench")
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Config:    opts.Config,
		Frames:    make([]Frame, 0, opts.Frames),
	}

	cam := camera.NewOrbitCamera(opts.FOVY)
	cam.MaxDistance = max(cam.MaxDistance, opts.Flight.FarDist)
	var err error

	log.Info("run started",
		zap.String("run_id", report.RunID),
		zap.Int("frames", opts.Frames),
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
	)

	for i := range opts.Frames {
		if err = ctx.Err(); err != nil {
			log.Warn("run interrupted", zap.Int("frame", i), zap.Error(err))
			break
		}

		opts.Flight.Apply(cam, i, opts.Frames)
		viewer := cam.Viewer(opts.Width, opts.Height)

		start := time.Now()
		items := w.Terrain.Update(viewer)
		elapsed := time.Since(start)

		frame := Frame{
			Index:    i,
			Eye:      viewer.Position,
			Duration: elapsed,
			Terrain:  w.Terrain.Stats(),
			Cache:    w.Cache.Stats(),
			Resident: w.Cache.Len(),
		}
		frame.MinLOD, frame.MaxLOD = lodRange(items)
		report.Frames = append(report.Frames, frame)

		log.Debug("frame",
			zap.Int("frame", i),
			zap.Float32("distance", cam.Distance),
			zap.Int("rendered", frame.Terrain.Rendered),
			zap.Int("splits", frame.Terrain.Splits),
			zap.Int("nodes", frame.Terrain.Nodes),
			zap.Int("resident", frame.Resident),
			zap.Duration("update", elapsed),
		)
	}

	report.Finish(w.Cache.Stats(), w.Pool.Capacity())
	log.Info("run finished",
		zap.String("run_id", report.RunID),
		zap.Int("frames", len(report.Frames)),
		zap.Int("max_rendered", report.Summary.MaxRendered),
		zap.Int("nodes", report.Summary.Nodes),
		zap.Float64("hit_rate", report.Summary.HitRate),
		zap.Duration("mean_update", report.Summary.MeanUpdate),
	)
	return report, err
}

func lodRange(items []terrain.RenderItem) (lo, hi uint8) {
	if len(items) == 0 {
		return 0, 0
	}
	lo = items[0].Key.LOD
	for _, it := range items {
		lo = min(lo, it.Key.LOD)
		hi = max(hi, it.Key.LOD)
	}
	return lo, hi
}

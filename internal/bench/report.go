package bench

import (
	"fmt"
	"os"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Frame is one simulated frame.
type Frame struct {
	Index    int                `json:"index"`
	Eye      math.Vec3          `json:"eye"`
	Duration time.Duration      `json:"update_ns"`
	Terrain  terrain.FrameStats `json:"terrain"`
	Cache    tile.Stats         `json:"cache"` // Cumulative
	Resident int                `json:"resident"`
	MinLOD   uint8              `json:"min_lod"`
	MaxLOD   uint8              `json:"max_lod"`
}

// Summary aggregates a run.
type Summary struct {
	Frames        int           `json:"frames"`
	MaxRendered   int           `json:"max_rendered"`
	MaxDepth      uint8         `json:"max_depth"`
	Nodes         int           `json:"nodes"`
	Splits        int           `json:"splits"`
	OverCapacity  int           `json:"over_capacity_frames"`
	HitRate       float64       `json:"hit_rate"`
	MeanUpdate    time.Duration `json:"mean_update_ns"`
	MaxUpdate     time.Duration `json:"max_update_ns"`
	TotalDuration time.Duration `json:"total_update_ns"`
}

// Report is the result of a run.
type Report struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Config    *config.Config `json:"config,omitempty"`
	Summary   Summary        `json:"summary"`
	Cache     tile.Stats     `json:"cache"`
	Frames    []Frame        `json:"frames"`
}

// Finish fills the summary from the recorded frames.
func (r *Report) Finish(cache tile.Stats, capacity int) {
	r.Cache = cache
	s := Summary{Frames: len(r.Frames)}
	for _, f := range r.Frames {
		s.MaxRendered = max(s.MaxRendered, f.Terrain.Rendered)
		s.MaxDepth = max(s.MaxDepth, f.Terrain.MaxDepth)
		s.Nodes = max(s.Nodes, f.Terrain.Nodes)
		s.Splits += f.Terrain.Splits
		s.MaxUpdate = max(s.MaxUpdate, f.Duration)
		s.TotalDuration += f.Duration
		if f.Terrain.Rendered > capacity {
			s.OverCapacity++
		}
	}
	if s.Frames > 0 {
		s.MeanUpdate = s.TotalDuration / time.Duration(s.Frames)
	}
	if lookups := cache.Hits + cache.Misses; lookups > 0 {
		s.HitRate = float64(cache.Hits) / float64(lookups)
	}
	r.Summary = s
}

// WriteFile writes the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

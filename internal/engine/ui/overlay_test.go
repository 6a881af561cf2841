package ui

import (
	"math"
	"slices"
	"testing"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
)

func TestOverlayFPS(t *testing.T) {
	o := NewOverlay()
	if !o.Enabled {
		t.Fatal("new overlay should be enabled")
	}

	// 29 frames of 16ms stay under the half-second window
	for range 29 {
		o.Update(16)
	}
	if o.FPS() != 0 {
		t.Errorf("FPS before first window = %v, want 0", o.FPS())
	}

	// The 32nd frame crosses 0.5s
	for range 3 {
		o.Update(16)
	}
	if want := 32 / 0.512; math.Abs(o.FPS()-want) > 1e-9 {
		t.Errorf("FPS = %v, want %v", o.FPS(), want)
	}
	if o.frameAccum != 0 {
		t.Errorf("frameAccum = %d after window, want 0", o.frameAccum)
	}
}

func TestOverlayHitRate(t *testing.T) {
	o := NewOverlay()
	if o.HitRate() != 0 {
		t.Errorf("HitRate with no lookups = %v, want 0", o.HitRate())
	}

	o.Cache = tile.Stats{Hits: 3, Misses: 1}
	if o.HitRate() != 75 {
		t.Errorf("HitRate = %v, want 75", o.HitRate())
	}
}

func TestOverlayLines(t *testing.T) {
	o := NewOverlay()
	o.Frame = terrain.FrameStats{Visited: 21, Rendered: 16, Splits: 5, MaxDepth: 2, Nodes: 21}
	o.Cache = tile.Stats{Hits: 9, Misses: 1, Evictions: 4}
	o.Resident = 16
	o.Capacity = 512

	want := []string{
		"Drawn: 16  Nodes: 21  Depth: 2",
		"Visited: 21  Splits: 5",
		"Tiles: 16 / 512",
		"Cache: 9 hits  1 misses (90.0%)",
		"Evictions: 4",
	}
	if got := o.Lines(); !slices.Equal(got, want) {
		t.Errorf("Lines() =\n%q\nwant\n%q", got, want)
	}
	if o.OverCapacity() {
		t.Error("16 of 512 tiles should not be over capacity")
	}

	o.Frame.Rendered = 600
	if !o.OverCapacity() {
		t.Error("600 of 512 tiles should be over capacity")
	}
}

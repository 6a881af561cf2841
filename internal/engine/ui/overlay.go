package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
)

// Toggle is a checkbox bound to a viewer flag.
type Toggle struct {
	Label string
	Value *bool
}

// Overlay renders refinement and tile cache statistics on screen.
type Overlay struct {
	// Frame timing
	fps           float64
	frameTime     float64 // ms
	fpsUpdateTime float64 // seconds since last FPS update
	frameAccum    int

	Frame    terrain.FrameStats
	Cache    tile.Stats
	Resident int
	Capacity int

	Enabled bool
}

// NewOverlay creates an enabled overlay.
func NewOverlay() *Overlay {
	return &Overlay{Enabled: true}
}

// Update advances frame timing. deltaMs is the frame time in milliseconds.
func (o *Overlay) Update(deltaMs float64) {
	o.frameTime = deltaMs
	o.frameAccum++
	o.fpsUpdateTime += deltaMs / 1000.0

	// Update FPS every 0.5 seconds
	if o.fpsUpdateTime >= 0.5 {
		o.fps = float64(o.frameAccum) / o.fpsUpdateTime
		o.frameAccum = 0
		o.fpsUpdateTime = 0
	}
}

// FPS returns the frame rate measured over the last half second.
func (o *Overlay) FPS() float64 {
	return o.fps
}

// HitRate returns the cache hit ratio in percent.
func (o *Overlay) HitRate() float64 {
	total := o.Cache.Hits + o.Cache.Misses
	if total == 0 {
		return 0
	}
	return 100 * float64(o.Cache.Hits) / float64(total)
}

// OverCapacity reports whether the last frame wanted more tiles than the
// pool holds.
func (o *Overlay) OverCapacity() bool {
	return o.Capacity > 0 && o.Frame.Rendered > o.Capacity
}

// Lines formats the statistics below the FPS line.
func (o *Overlay) Lines() []string {
	return []string{
		fmt.Sprintf("Drawn: %d  Nodes: %d  Depth: %d", o.Frame.Rendered, o.Frame.Nodes, o.Frame.MaxDepth),
		fmt.Sprintf("Visited: %d  Splits: %d", o.Frame.Visited, o.Frame.Splits),
		fmt.Sprintf("Tiles: %d / %d", o.Resident, o.Capacity),
		fmt.Sprintf("Cache: %d hits  %d misses (%.1f%%)", o.Cache.Hits, o.Cache.Misses, o.HitRate()),
		fmt.Sprintf("Evictions: %d", o.Cache.Evictions),
	}
}

// Render draws the overlay window with optional toggles below the stats.
func (o *Overlay) Render(toggles ...Toggle) {
	if !o.Enabled {
		return
	}

	// Position at top-left corner
	imgui.SetNextWindowPos(imgui.NewVec2(10, 10))
	imgui.SetNextWindowSize(imgui.NewVec2(280, 0)) // Auto height

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoSavedSettings | imgui.WindowFlagsNoFocusOnAppearing
	if len(toggles) == 0 {
		flags |= imgui.WindowFlagsNoInputs
	}

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(8, 8))
	imgui.SetNextWindowBgAlpha(0.6)

	if imgui.BeginV("##TerrainOverlay", nil, flags) {
		o.renderFPS()
		imgui.Separator()
		for i, line := range o.Lines() {
			// Tiles line turns red when the frame aliases pool slots.
			if i == 2 && o.OverCapacity() {
				imgui.TextColored(imgui.NewVec4(1.0, 0.2, 0.2, 1.0), line)
				continue
			}
			imgui.Text(line)
		}
		if len(toggles) > 0 {
			imgui.Separator()
			for _, t := range toggles {
				imgui.Checkbox(t.Label, t.Value)
			}
		}
	}
	imgui.End()

	imgui.PopStyleVar()
}

func (o *Overlay) renderFPS() {
	// FPS with color coding
	fpsColor := imgui.NewVec4(0.2, 1.0, 0.2, 1.0) // Green
	if o.fps < 30 {
		fpsColor = imgui.NewVec4(1.0, 0.2, 0.2, 1.0) // Red
	} else if o.fps < 60 {
		fpsColor = imgui.NewVec4(1.0, 1.0, 0.2, 1.0) // Yellow
	}

	imgui.TextColored(fpsColor, fmt.Sprintf("FPS: %.1f", o.fps))
	imgui.SameLine()
	imgui.TextDisabled(fmt.Sprintf("(%.2f ms)", o.frameTime))
}

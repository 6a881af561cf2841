// Package viewer implements the interactive terrain viewer loop.
package viewer

import (
	"fmt"
	gomath "math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/renderer"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture/gltexture"
	"github.com/Faultbox/midgard-terrain/internal/engine/ui"
	"github.com/Faultbox/midgard-terrain/internal/engine/window"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/internal/world"
)

const title = "Midgard Terrain"

// Viewer is the main viewer instance. With the overlay enabled the ImGui
// backend owns the window and the loop, otherwise a plain SDL window does.
type Viewer struct {
	cfg      *config.Config
	running  bool
	frozen   bool // Keep the last refinement while the camera moves
	boxes    bool // Draw node bounding boxes
	shoot    bool // Capture the next frame
	lines    []float32
	shots    *debug.ScreenshotCapture
	window   *window.Window
	input    *window.Input
	backend  *ui.Backend
	overlay  *ui.Overlay
	renderer *renderer.Renderer
	world    *world.World
	camera   *camera.OrbitCamera
	log      *zap.Logger
}

// New opens the window and builds the world on the GPU.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg: cfg,
		log: logger.Named("viewer"),
	}

	// Create window (this also creates OpenGL context)
	width, height, err := v.openWindow()
	if err != nil {
		return nil, err
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	v.renderer, err = renderer.New(renderer.Config{
		Width:          width,
		Height:         height,
		TileResolution: cfg.Terrain.TileResolution,
		HeightScale:    cfg.Noise.Amplitude,
		FogDistance:    cfg.Terrain.Size,
		Offscreen:      v.backend != nil,
	})
	if err != nil {
		v.closeWindow()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.world, err = world.New(cfg, gltexture.New())
	if err != nil {
		v.renderer.Close()
		v.closeWindow()
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	v.camera = camera.NewOrbitCamera(cfg.View.FOVDegrees * gomath.Pi / 180)
	v.camera.Distance = cfg.Terrain.Size / 3
	v.camera.MaxDistance = cfg.Terrain.Size * 2
	v.camera.Far = cfg.Terrain.Size * 4
	v.camera.FollowGround(v.world.Height)

	v.shots = debug.NewScreenshotCapture("screenshots", "terrain")

	v.log.Info("viewer initialized", zap.Bool("overlay", v.backend != nil))
	return v, nil
}

func (v *Viewer) openWindow() (int, int, error) {
	if v.cfg.View.Overlay {
		var err error
		v.backend, err = ui.NewBackend(title, int32(v.cfg.View.Width), int32(v.cfg.View.Height))
		if err != nil {
			return 0, 0, fmt.Errorf("failed to create ui backend: %w", err)
		}
		v.overlay = ui.NewOverlay()
		// The backend destroys the GL context when its loop ends.
		v.backend.OnClose(v.release)
		width, height := v.backend.GetWindowSize()
		return int(width), int(height), nil
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      v.cfg.View.Width,
		Height:     v.cfg.View.Height,
		Fullscreen: v.cfg.View.Fullscreen,
		VSync:      v.cfg.View.VSync,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create window: %w", err)
	}
	v.input = window.NewInput()
	width, height := v.window.DrawableSize()
	return width, height, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true
	v.log.Info("starting main loop")

	if v.backend != nil {
		v.runOverlay()
		return nil
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}

		// 2. Update camera and refine
		v.apply(v.sdlControls(), dt)
		if !v.running {
			break
		}

		// 3. Render
		v.render()

		// 4. Present
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.logStats(float64(frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// runOverlay drives a frame from the ImGui loop: the terrain is drawn into
// the offscreen target, shown as the background, and the overlay on top.
func (v *Viewer) runOverlay() {
	lastTime := time.Now()
	statsTimer := time.Now()

	toggles := []ui.Toggle{
		{Label: "Wireframe (F)", Value: &v.renderer.Terrain.Wireframe},
		{Label: "LOD tint (L)", Value: &v.renderer.Terrain.TintLOD},
		{Label: "Node boxes (B)", Value: &v.boxes},
		{Label: "Freeze refinement (Space)", Value: &v.frozen},
	}

	v.backend.Run(func() {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if w, h := v.backend.GetWindowSize(); w > 0 && h > 0 {
			if rw, rh := v.renderer.Size(); int(w) != rw || int(h) != rh {
				v.renderer.Resize(int(w), int(h))
			}
		}

		v.apply(ui.ReadControls(), dt)
		if !v.running {
			v.backend.Close()
		}

		v.render()

		v.overlay.Update(float64(dt) * 1000)
		v.overlay.Frame = v.world.Terrain.Stats()
		v.overlay.Cache = v.world.Cache.Stats()
		v.overlay.Resident = v.world.Cache.Len()
		v.overlay.Capacity = v.world.Pool.Capacity()

		v.backend.DrawScene(v.renderer.Texture())
		v.overlay.Render(toggles...)

		if time.Since(statsTimer) >= time.Second {
			v.logStats(v.overlay.FPS())
			statsTimer = now
		}
	})
}

// sdlControls translates the polled SDL events into frontend-neutral
// controls.
func (v *Viewer) sdlControls() ui.Controls {
	c := ui.Controls{
		Forward: v.input.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S),
		Right:   v.input.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A),
	}
	for _, event := range v.input.Events() {
		switch event.Type {
		case window.EventWindowResize:
			width, height := v.window.DrawableSize()
			v.renderer.Resize(width, height)
		case window.EventMouseDrag:
			c.DragX += event.DX
			c.DragY += event.DY
		case window.EventMouseWheel:
			c.Wheel += event.DY
		case window.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				c.Quit = true
			case sdl.SCANCODE_F:
				c.Wireframe = true
			case sdl.SCANCODE_L:
				c.TintLOD = true
			case sdl.SCANCODE_B:
				c.Boxes = true
			case sdl.SCANCODE_F12:
				c.Screenshot = true
			case sdl.SCANCODE_SPACE:
				c.Freeze = true
			}
		}
	}
	return c
}

// apply moves the camera and flips toggles. Refinement runs in render so it
// sees the final camera of the frame.
func (v *Viewer) apply(c ui.Controls, dt float32) {
	if c.Quit {
		v.running = false
		return
	}
	if c.Wireframe {
		v.renderer.Terrain.Wireframe = !v.renderer.Terrain.Wireframe
	}
	if c.TintLOD {
		v.renderer.Terrain.TintLOD = !v.renderer.Terrain.TintLOD
	}
	if c.Boxes {
		v.boxes = !v.boxes
	}
	if c.Screenshot {
		v.shoot = true
	}
	if c.Freeze {
		v.frozen = !v.frozen
		v.log.Info("refinement", zap.Bool("frozen", v.frozen))
	}

	if c.DragX != 0 || c.DragY != 0 {
		v.camera.HandleDrag(c.DragX, c.DragY)
	}
	if c.Wheel != 0 {
		v.camera.HandleZoom(c.Wheel)
	}
	if c.Forward != 0 || c.Right != 0 {
		// HandleMovement steps once per call; scale to 60 steps per second.
		v.camera.HandleMovement(c.Forward*dt*60, c.Right*dt*60)
		v.camera.FollowGround(v.world.Height)
	}
}

func (v *Viewer) render() {
	width, height := v.renderer.Size()

	if !v.frozen {
		v.world.Terrain.Update(v.camera.Viewer(width, height))
	}
	items := v.world.Terrain.Items()

	viewProj := v.camera.ViewProjection(width, height)

	v.renderer.Begin()
	v.renderer.Terrain.Draw(viewProj, v.camera.Position(), v.world.Pool.Array(), items)
	if v.boxes {
		v.lines = debug.NodeBoxes(v.lines[:0], v.world.Terrain, items)
		v.renderer.Lines.Draw(viewProj, v.lines)
	}
	v.renderer.End()

	if v.shoot {
		v.shoot = false
		pixels, w, h := v.renderer.ReadPixels()
		path, err := v.shots.CaptureFromPixels(pixels, w, h)
		if err != nil {
			v.log.Warn("screenshot failed", zap.Error(err))
		} else {
			v.log.Info("screenshot saved", zap.String("path", path))
		}
	}
}

func (v *Viewer) logStats(fps float64) {
	stats := v.world.Terrain.Stats()
	cache := v.world.Cache.Stats()
	v.log.Debug("fps",
		zap.Float64("fps", fps),
		zap.Int("rendered", stats.Rendered),
		zap.Int("nodes", stats.Nodes),
		zap.Uint8("depth", stats.MaxDepth),
		zap.Int("resident", v.world.Cache.Len()),
		zap.Uint64("hits", cache.Hits),
		zap.Uint64("misses", cache.Misses),
		zap.Uint64("evictions", cache.Evictions),
	)
}

// release frees GPU resources. It runs from the backend's close hook in
// overlay mode and from Close otherwise.
func (v *Viewer) release() {
	if v.world != nil {
		v.world.Close()
		v.world = nil
	}
	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
}

func (v *Viewer) closeWindow() {
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	v.release()
	v.closeWindow()
}

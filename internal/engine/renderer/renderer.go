// Package renderer draws the refined terrain with OpenGL.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width          int
	Height         int
	TileResolution int     // Samples per tile edge
	HeightScale    float32 // Elevation that maps to the top of the color ramp
	FogDistance    float32
	Offscreen      bool // Draw into a Target instead of the default framebuffer
}

// Renderer owns frame setup and the terrain pass.
type Renderer struct {
	config Config

	Terrain *TerrainRenderer
	Lines   *LineRenderer
	target  *Target
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.ClearColor(0.62, 0.72, 0.82, 1.0) // Matches the fog color
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.Terrain, err = NewTerrainRenderer(cfg.TileResolution, cfg.HeightScale, cfg.FogDistance)
	if err != nil {
		return nil, fmt.Errorf("failed to create terrain renderer: %w", err)
	}

	r.Lines, err = NewLineRenderer()
	if err != nil {
		r.Terrain.Close()
		return nil, fmt.Errorf("failed to create line renderer: %w", err)
	}

	if cfg.Offscreen {
		r.target, err = NewTarget(cfg.Width, cfg.Height)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to create render target: %w", err)
		}
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.Terrain != nil {
		r.Terrain.Close()
	}
	if r.Lines != nil {
		r.Lines.Close()
	}
	if r.target != nil {
		r.target.Close()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	if r.target != nil {
		if err := r.target.Resize(width, height); err != nil {
			logger.Warn("render target resize failed", zap.Error(err))
		}
	}
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Texture returns the offscreen color texture, or 0 when drawing to the
// default framebuffer.
func (r *Renderer) Texture() uint32 {
	if r.target == nil {
		return 0
	}
	return r.target.Texture()
}

// Begin starts a new frame. The UI pass may have changed the fixed-function
// state, so it is set again here.
func (r *Renderer) Begin() {
	if r.target != nil {
		r.target.Bind()
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.SCISSOR_TEST)
	gl.ClearColor(0.62, 0.72, 0.82, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	if r.target != nil {
		r.target.Unbind()
	}
}

// ReadPixels returns the last frame as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	width, height := r.config.Width, r.config.Height
	if r.target != nil {
		r.target.Bind()
		defer r.target.Unbind()
	}
	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// Package config handles terrain engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all engine settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Pool    PoolConfig    `yaml:"pool"`
	Noise   NoiseConfig   `yaml:"noise"`
	View    ViewConfig    `yaml:"view"`
	Bench   BenchConfig   `yaml:"bench"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig holds quadtree refinement settings.
type TerrainConfig struct {
	Size           float32 `yaml:"size"`            // Edge length of the root node in world units
	MaxLOD         uint8   `yaml:"max_lod"`         // Refinement depth ceiling
	Tau            float32 `yaml:"tau"`             // Screen-space error threshold in pixels
	RootError      float32 `yaml:"root_error"`      // Geometric error of the root node
	TileResolution int     `yaml:"tile_resolution"` // Heightmap samples per tile edge
}

// PoolConfig holds GPU tile pool settings.
type PoolConfig struct {
	Capacity int    `yaml:"capacity"` // Number of texture array slices
	Format   string `yaml:"format"`   // Texel format, currently only "r32f"
}

// NoiseConfig holds the procedural heightmap parameters.
type NoiseConfig struct {
	Seed       int64   `yaml:"seed"`
	Octaves    int     `yaml:"octaves"`
	Frequency  float32 `yaml:"frequency"`
	Lacunarity float32 `yaml:"lacunarity"`
	Gain       float32 `yaml:"gain"`
	Amplitude  float32 `yaml:"amplitude"`
}

// ViewConfig holds display and viewer settings.
type ViewConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	FOVDegrees float32 `yaml:"fov_deg"` // Vertical field of view
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	Overlay    bool    `yaml:"overlay"` // ImGui stats overlay and toggles
}

// BenchConfig holds settings for the headless benchmark.
type BenchConfig struct {
	Frames      int    `yaml:"frames"`
	Report      string `yaml:"report"`       // Optional JSON report path
	MetricsAddr string `yaml:"metrics_addr"` // Optional Prometheus listen address
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		// Tau and root error keep the scripted bench flight at 1280x720 well
		// under the pool capacity; refining harder aliases tiles within a frame.
		Terrain: TerrainConfig{
			Size:           16384,
			MaxLOD:         10,
			Tau:            8.0,
			RootError:      256,
			TileResolution: 65,
		},
		Pool: PoolConfig{
			Capacity: 512,
			Format:   "r32f",
		},
		Noise: NoiseConfig{
			Seed:       1337,
			Octaves:    8,
			Frequency:  1.0 / 4096,
			Lacunarity: 2.0,
			Gain:       0.5,
			Amplitude:  1200,
		},
		View: ViewConfig{
			Width:      1280,
			Height:     720,
			FOVDegrees: 60,
			Fullscreen: false,
			VSync:      true,
			Overlay:    true,
		},
		Bench: BenchConfig{
			Frames: 600,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the values a terrain cannot be built from.
func (c *Config) Validate() error {
	switch {
	case c.Terrain.Size <= 0:
		return fmt.Errorf("%w: terrain.size must be positive, got %v", ErrInvalid, c.Terrain.Size)
	case c.Terrain.Tau <= 0:
		return fmt.Errorf("%w: terrain.tau must be positive, got %v", ErrInvalid, c.Terrain.Tau)
	case c.Terrain.TileResolution < 2:
		return fmt.Errorf("%w: terrain.tile_resolution must be at least 2, got %d", ErrInvalid, c.Terrain.TileResolution)
	case c.Pool.Capacity <= 0:
		return fmt.Errorf("%w: pool.capacity must be positive, got %d", ErrInvalid, c.Pool.Capacity)
	case c.Pool.Format != "r32f":
		return fmt.Errorf("%w: unsupported pool.format %q", ErrInvalid, c.Pool.Format)
	case c.View.Width <= 0 || c.View.Height <= 0:
		return fmt.Errorf("%w: view size %dx%d", ErrInvalid, c.View.Width, c.View.Height)
	case c.View.FOVDegrees <= 0 || c.View.FOVDegrees >= 180:
		return fmt.Errorf("%w: view.fov_deg must be in (0, 180), got %v", ErrInvalid, c.View.FOVDegrees)
	}
	return nil
}

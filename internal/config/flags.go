package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagMaxLOD      = flag.Int("max-lod", -1, "Quadtree depth ceiling")
	flagTau         = flag.Float64("tau", 0, "Screen-space error threshold in pixels")
	flagPool        = flag.Int("pool", 0, "GPU tile pool capacity")
	flagSeed        = flag.Int64("seed", 0, "Heightmap noise seed")
	flagWidth       = flag.Int("width", 0, "Viewport width")
	flagHeight      = flag.Int("height", 0, "Viewport height")
	flagFrames      = flag.Int("frames", 0, "Number of frames to simulate (terrainbench)")
	flagReport      = flag.String("report", "", "Write a JSON report to this path (terrainbench)")
	flagMetricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flagSaveConfig  = flag.String("save-config", "", "Write the effective config to this path")
	flagNoOverlay   = flag.Bool("no-overlay", false, "Use a plain SDL window without the stats overlay (terrainview)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMaxLOD >= 0 {
		cfg.Terrain.MaxLOD = uint8(min(*flagMaxLOD, 255))
	}
	if *flagTau > 0 {
		cfg.Terrain.Tau = float32(*flagTau)
	}
	if *flagPool > 0 {
		cfg.Pool.Capacity = *flagPool
	}
	if *flagSeed != 0 {
		cfg.Noise.Seed = *flagSeed
	}
	if *flagWidth > 0 {
		cfg.View.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.View.Height = *flagHeight
	}
	if *flagFrames > 0 {
		cfg.Bench.Frames = *flagFrames
	}
	if *flagReport != "" {
		cfg.Bench.Report = *flagReport
	}
	if *flagMetricsAddr != "" {
		cfg.Bench.MetricsAddr = *flagMetricsAddr
	}
	if *flagNoOverlay {
		cfg.View.Overlay = false
	}
}

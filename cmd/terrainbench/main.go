// Package main flies a scripted camera over the terrain without a window and
// reports what the quadtree and tile cache did each frame.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/bench"
	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/internal/world"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := config.SaveRequested(cfg); err != nil {
		logger.Error("failed to save config", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("=== Midgard Terrain Bench ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("bench failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Bench.MetricsAddr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go bench.ServeMetrics(metricsCtx, cfg.Bench.MetricsAddr)
	}

	w, err := world.New(cfg, texture.NewMemoryBackend())
	if err != nil {
		return fmt.Errorf("create world: %w", err)
	}
	defer w.Close()

	report, err := bench.Run(ctx, w, bench.OptionsFromConfig(cfg, w))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if cfg.Bench.Report != "" {
		if err := report.WriteFile(cfg.Bench.Report); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", cfg.Bench.Report))
	}
	return nil
}

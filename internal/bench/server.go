package bench

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// MetricsHandler serves the default Prometheus registry on /metrics.
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// ServeMetrics serves MetricsHandler on addr until ctx is done. It blocks.
func ServeMetrics(ctx context.Context, addr string) {
	log := logger.Named("metrics")
	s := &http.Server{
		Addr:              addr,
		Handler:           MetricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			log.Warn("shutting down the server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()

	log.Info("starting server", zap.String("addr", addr))
	switch err := s.ListenAndServe(); {
	case err == nil, errors.Is(err, http.ErrServerClosed):
		log.Info("stopping server", zap.String("addr", addr))
	default:
		log.Warn("server stopped", zap.String("addr", addr), zap.Error(err))
	}
}

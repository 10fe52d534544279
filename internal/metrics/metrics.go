package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jetton_sender_transfers_total",
		Help: "Number of transfer submissions by outcome.",
	}, []string{"status"})

	SubmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jetton_sender_submit_duration_seconds",
		Help:    "Wall-clock duration of a single transfer submission.",
		Buckets: prometheus.DefBuckets,
	})

	Destinations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jetton_sender_destinations",
		Help: "Number of destinations loaded for the current run.",
	})
)

// Serve exposes Prometheus metrics on the given port until the context is
// cancelled.
func Serve(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}()

	slog.Info("Serving metrics", "port", port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics listener failed: %w", err)
	}

	return nil
}

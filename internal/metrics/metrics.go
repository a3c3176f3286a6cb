package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emudock",
			Subsystem: "guest",
			Name:      "launches_total",
			Help:      "Guest launch attempts by result.",
		}, []string{"result"},
	)
	discoveryAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "emudock",
			Subsystem: "embed",
			Name:      "discovery_attempts",
			Help:      "Window registry polls needed to find the guest window.",
			Buckets:   []float64{1, 2, 4, 8, 12, 16, 20},
		},
	)
	embeds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emudock",
			Subsystem: "embed",
			Name:      "results_total",
			Help:      "Embedding outcomes (embedded, discovery_timeout, step_failed, canceled).",
		}, []string{"result"},
	)
	fullscreenTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emudock",
			Subsystem: "fullscreen",
			Name:      "transitions_total",
			Help:      "Guest presentation transitions by target state.",
		}, []string{"to"},
	)
	focusPushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emudock",
			Subsystem: "focus",
			Name:      "pushes_total",
			Help:      "Focus push loops by result.",
		}, []string{"result"},
	)
	guestExits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "emudock",
			Subsystem: "guest",
			Name:      "exits_total",
			Help:      "Guest exits detected by the watchdog.",
		},
	)
	sessionActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "emudock",
			Subsystem: "session",
			Name:      "active",
			Help:      "1 while a guest session is running.",
		},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	for _, c := range []prometheus.Collector{
		launches, discoveryAttempts, embeds, fullscreenTransitions,
		focusPushes, guestExits, sessionActive,
	} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	regOK.Store(true)
	return nil
}

func RecordLaunch(result string) { launches.WithLabelValues(result).Inc() }

func ObserveDiscovery(attempts int) { discoveryAttempts.Observe(float64(attempts)) }

func RecordEmbed(result string) { embeds.WithLabelValues(result).Inc() }

func RecordFullscreenTransition(to string) { fullscreenTransitions.WithLabelValues(to).Inc() }

func RecordFocus(result string) { focusPushes.WithLabelValues(result).Inc() }

func RecordGuestExit() { guestExits.Inc() }

func SetSessionActive(active bool) {
	if active {
		sessionActive.Set(1)
		return
	}
	sessionActive.Set(0)
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	if err := Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

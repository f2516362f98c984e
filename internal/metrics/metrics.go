// Package metrics exposes Prometheus instrumentation for snapshots and the
// listing API.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Snapshot outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	snapshots    *prometheus.CounterVec
	pages        prometheus.Counter
	apiResponses *prometheus.CounterVec
	holders      prometheus.Histogram
	duration     prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		snapshots: f.NewCounterVec(prometheus.CounterOpts{
			Name: "snapbot_snapshots_total",
			Help: "Snapshot invocations by outcome.",
		}, []string{"outcome"}),
		pages: f.NewCounter(prometheus.CounterOpts{
			Name: "snapbot_pages_fetched_total",
			Help: "Holder pages fetched from the listing API.",
		}),
		apiResponses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "snapbot_api_responses_total",
			Help: "Listing API responses by status class (2xx, 4xx, 5xx, error).",
		}, []string{"class"}),
		holders: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "snapbot_snapshot_holders",
			Help:    "Number of holders in delivered snapshots.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "snapbot_snapshot_duration_seconds",
			Help:    "Wall time of one snapshot invocation.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}

// RecordSnapshot records the outcome of one invocation.
func (m *Metrics) RecordSnapshot(outcome string, holders int, took time.Duration) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(outcome).Inc()
	m.duration.Observe(took.Seconds())
	if outcome == OutcomeSuccess || outcome == OutcomeEmpty {
		m.holders.Observe(float64(holders))
	}
}

// SnapshotCounter returns the counter for one outcome.
func (m *Metrics) SnapshotCounter(outcome string) prometheus.Counter {
	return m.snapshots.WithLabelValues(outcome)
}

// RecordPage counts one fetched page.
func (m *Metrics) RecordPage() {
	if m == nil {
		return
	}
	m.pages.Inc()
}

// RecordAPIResponse counts one API response by status class. A status of 0
// means the request failed before a response arrived.
func (m *Metrics) RecordAPIResponse(status int) {
	if m == nil {
		return
	}
	m.apiResponses.WithLabelValues(statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "error"
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

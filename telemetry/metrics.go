// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	SyncCycles      prometheus.Counter
	SyncRebuilds    prometheus.Counter
	SyncNoOps       prometheus.Counter
	SyncFailures    prometheus.Counter
	EventsDropped   prometheus.Counter
	MessagesPosted  prometheus.Counter
	MessagesDeleted prometheus.Counter

	// Histograms (seconds)
	CycleDuration prometheus.Observer

	// Gauges
	DesiredStreamsGauge prometheus.Gauge
	LastRunGauge        prometheus.Gauge // unix seconds of the last completed cycle
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		SyncCycles = promauto.NewCounter(prometheus.CounterOpts{Name: "schedule_sync_cycles_total", Help: "Number of reconciliation cycles run"})
		SyncRebuilds = promauto.NewCounter(prometheus.CounterOpts{Name: "schedule_sync_rebuilds_total", Help: "Number of cycles that rebuilt the channel"})
		SyncNoOps = promauto.NewCounter(prometheus.CounterOpts{Name: "schedule_sync_noops_total", Help: "Number of cycles that left the channel untouched"})
		SyncFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "schedule_sync_failures_total", Help: "Number of cycles aborted by an error"})
		EventsDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "schedule_sync_events_dropped_total", Help: "Number of malformed schedule events dropped during resolution"})
		MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{Name: "schedule_sync_messages_posted_total", Help: "Number of Discord messages posted by rebuilds"})
		MessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{Name: "schedule_sync_messages_deleted_total", Help: "Number of Discord messages deleted while clearing"})
		CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "schedule_sync_cycle_duration_seconds", Help: "Reconciliation cycle duration seconds", Buckets: prometheus.DefBuckets})
		DesiredStreamsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "schedule_sync_desired_streams", Help: "Number of resolved events in the last fetched schedule"})
		LastRunGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "schedule_sync_last_run_timestamp_seconds", Help: "Unix time of the last completed cycle"})
	})
}

// Metric helpers are nil-safe so the sync path can record without Init
// (tests run without a registry).

func CountCycle() {
	if SyncCycles != nil {
		SyncCycles.Inc()
	}
}

func CountRebuild() {
	if SyncRebuilds != nil {
		SyncRebuilds.Inc()
	}
}

func CountNoOp() {
	if SyncNoOps != nil {
		SyncNoOps.Inc()
	}
}

func CountFailure() {
	if SyncFailures != nil {
		SyncFailures.Inc()
	}
}

func AddEventsDropped(n int) {
	if EventsDropped != nil && n > 0 {
		EventsDropped.Add(float64(n))
	}
}

func AddMessagesPosted(n int) {
	if MessagesPosted != nil && n > 0 {
		MessagesPosted.Add(float64(n))
	}
}

func AddMessagesDeleted(n int) {
	if MessagesDeleted != nil && n > 0 {
		MessagesDeleted.Add(float64(n))
	}
}

func ObserveCycleDuration(d time.Duration) {
	if CycleDuration != nil {
		CycleDuration.Observe(d.Seconds())
	}
}

// SetDesiredStreams records the size of the last resolved schedule.
func SetDesiredStreams(n int) {
	if DesiredStreamsGauge != nil {
		DesiredStreamsGauge.Set(float64(n))
	}
}

// MarkLastRun records when the most recent cycle finished.
func MarkLastRun(t time.Time) {
	if LastRunGauge != nil {
		LastRunGauge.Set(float64(t.Unix()))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}

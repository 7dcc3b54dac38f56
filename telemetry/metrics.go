// Package telemetry provides Prometheus metrics, OpenTelemetry tracing setup
// and correlation-id aware logging helpers.
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
	CommandsProcessed prometheus.Counter
	CommandsFailed    prometheus.Counter
	CatalogRequests   prometheus.Counter
	CatalogErrors     prometheus.Counter
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	CooldownDropped   prometheus.Counter

	// Histograms (seconds)
	CommandDuration prometheus.Observer
	ResolveDuration prometheus.Observer

	// Gauges
	JoinedChannelsGauge prometheus.Gauge
	CacheSizeGauge      prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandsProcessed = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_processed_total", Help: "Number of chat commands handled"})
		CommandsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_failed_total", Help: "Number of chat commands that ended in an error reply"})
		CatalogRequests = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_catalog_requests_total", Help: "Number of speedrun.com API requests issued"})
		CatalogErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_catalog_errors_total", Help: "Number of speedrun.com API requests that failed"})
		CacheHits = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_result_cache_hits_total", Help: "Number of formatted responses served from cache"})
		CacheMisses = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_result_cache_misses_total", Help: "Number of cache lookups that missed or were expired"})
		CooldownDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_cooldown_dropped_total", Help: "Number of commands ignored due to channel cooldown"})
		CommandDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "bot_command_duration_seconds", Help: "End-to-end command handling duration seconds", Buckets: prometheus.DefBuckets})
		ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "bot_resolve_duration_seconds", Help: "Catalog resolution duration seconds", Buckets: prometheus.DefBuckets})
		JoinedChannelsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_joined_channels", Help: "Current number of joined chat channels"})
		CacheSizeGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_result_cache_entries", Help: "Current number of entries in the result cache"})
	})
}

// Inc increments c if metrics are registered. Packages exercised by tests
// without Init use this instead of touching counters directly.
func Inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// SetJoinedChannels records the number of channels the bot currently sits in.
func SetJoinedChannels(n int) {
	if JoinedChannelsGauge != nil {
		JoinedChannelsGauge.Set(float64(n))
	}
}

// SetCacheSize records the current result cache entry count.
func SetCacheSize(n int) {
	if CacheSizeGauge != nil {
		CacheSizeGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records it in obs if non-nil.
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

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or an empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger carrying the corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}

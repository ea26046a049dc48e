// Package metrics provides Prometheus metrics for multiview-abr-sim.
//
// Metrics are organized into two tiers:
//   - Tier 1 (always enabled): batch-wide aggregate metrics, safe for
//     batches of any size
//   - Tier 2 (optional, CaptureViewDistributions-style high-cardinality
//     opt-in): per-session metrics for debugging a small batch
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// Tier 1: Aggregate Metrics (Always Enabled)
// =============================================================================

// --- Panel 1: Batch Overview ---
var (
	abrSimInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "abr_sim_info",
			Help: "Information about the batch run (value always 1)",
		},
		[]string{"controller", "throughput_predictor", "view_predictor"},
	)

	abrSimTargetSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_target_sessions",
			Help: "Target number of sessions in the batch",
		},
	)

	abrSimActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_active_sessions",
			Help: "Sessions currently running",
		},
	)

	abrSimProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_progress",
			Help: "Batch completion progress (0.0 to 1.0)",
		},
	)

	abrSimElapsedSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_elapsed_seconds",
			Help: "Seconds since the batch started",
		},
	)
)

// --- Panel 2: Session Completion ---
var (
	abrSimSessionsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "abr_sim_sessions_completed_total",
			Help: "Total sessions that completed successfully",
		},
	)

	abrSimSessionsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "abr_sim_sessions_failed_total",
			Help: "Total sessions that aborted with an error",
		},
	)

	abrSimSessionsPerSecond = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_sessions_per_second",
			Help: "Current session completion rate",
		},
	)
)

// --- Panel 3: Rebuffering ---
var (
	abrSimRebufferingSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "abr_sim_rebuffering_seconds",
			Help:    "Per-session rebuffering time distribution",
			Buckets: []float64{0, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	abrSimRebufferingP50Seconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_rebuffering_p50_seconds",
			Help: "Rebuffering 50th percentile (median) across the batch",
		},
	)

	abrSimRebufferingP95Seconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_rebuffering_p95_seconds",
			Help: "Rebuffering 95th percentile across the batch",
		},
	)

	abrSimRebufferingP99Seconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_rebuffering_p99_seconds",
			Help: "Rebuffering 99th percentile across the batch",
		},
	)

	abrSimRebufferingPeakSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_rebuffering_peak_seconds",
			Help: "Worst single session's rebuffering time observed so far",
		},
	)
)

// --- Panel 4: Delivered Quality ---
var (
	abrSimBitrateMbps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "abr_sim_bitrate_mbps",
			Help:    "Per-session average delivered bitrate distribution",
			Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32},
		},
	)

	abrSimBitrateP50Mbps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_bitrate_p50_mbps",
			Help: "Delivered bitrate 50th percentile (median) across the batch",
		},
	)

	abrSimBitrateP95Mbps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_bitrate_p95_mbps",
			Help: "Delivered bitrate 95th percentile across the batch",
		},
	)

	abrSimBitrateP99Mbps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abr_sim_bitrate_p99_mbps",
			Help: "Delivered bitrate 99th percentile across the batch",
		},
	)
)

// --- Panel 5: Data Transferred ---
var (
	abrSimDownloadedMBTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "abr_sim_downloaded_mb_total",
			Help: "Total megabytes downloaded across the batch",
		},
	)

	abrSimWastedMBTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "abr_sim_wasted_mb_total",
			Help: "Total megabytes of buffered segments discarded when replaced by an upgrade",
		},
	)
)

// --- Panel 6: Errors ---
var (
	abrSimSessionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abr_sim_session_errors_total",
			Help: "Session failures by error category",
		},
		[]string{"category"}, // "config", "shape", "data"
	)
)

// =============================================================================
// Tier 2: Per-Session Metrics (Optional)
// WARNING: High cardinality - use only with small batches.
// =============================================================================

var (
	abrSimSessionRebufferingSeconds *prometheus.GaugeVec
	abrSimSessionBitrateMbps        *prometheus.GaugeVec
)

// initPerSessionMetrics initializes Tier 2 metrics.
func initPerSessionMetrics(registry prometheus.Registerer) {
	abrSimSessionRebufferingSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "abr_sim_session_rebuffering_seconds",
			Help: "Per-session rebuffering time (requires per-session metrics)",
		},
		[]string{"session_id"},
	)

	abrSimSessionBitrateMbps = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "abr_sim_session_bitrate_mbps",
			Help: "Per-session average delivered bitrate (requires per-session metrics)",
		},
		[]string{"session_id"},
	)

	registry.MustRegister(abrSimSessionRebufferingSeconds, abrSimSessionBitrateMbps)
}

// =============================================================================
// Collector
// =============================================================================

// Collector manages all Prometheus metrics for a batch run.
type Collector struct {
	perSessionEnabled bool
	targetSessions    int
	controller        string
	throughputPredictor string
	viewPredictor     string

	startTime time.Time

	mu                    sync.Mutex
	prevSessionsCompleted int64
	prevSessionsFailed    int64
	prevDownloadedMB      float64
	prevWastedMB          float64
	prevSessionErrors     map[string]int64

	registeredSessionIDs map[int]struct{}
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	TargetSessions      int
	Controller          string
	ThroughputPredictor string
	ViewPredictor       string
	PerSessionMetrics   bool
}

// NewCollector creates a new metrics collector.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		perSessionEnabled:    cfg.PerSessionMetrics,
		targetSessions:       cfg.TargetSessions,
		controller:           cfg.Controller,
		throughputPredictor:  cfg.ThroughputPredictor,
		viewPredictor:        cfg.ViewPredictor,
		startTime:            time.Now(),
		prevSessionErrors:    make(map[string]int64),
		registeredSessionIDs: make(map[int]struct{}),
	}

	registry.MustRegister(
		abrSimInfo,
		abrSimTargetSessions,
		abrSimActiveSessions,
		abrSimProgress,
		abrSimElapsedSeconds,

		abrSimSessionsCompletedTotal,
		abrSimSessionsFailedTotal,
		abrSimSessionsPerSecond,

		abrSimRebufferingSeconds,
		abrSimRebufferingP50Seconds,
		abrSimRebufferingP95Seconds,
		abrSimRebufferingP99Seconds,
		abrSimRebufferingPeakSeconds,

		abrSimBitrateMbps,
		abrSimBitrateP50Mbps,
		abrSimBitrateP95Mbps,
		abrSimBitrateP99Mbps,

		abrSimDownloadedMBTotal,
		abrSimWastedMBTotal,

		abrSimSessionErrorsTotal,
	)

	if cfg.PerSessionMetrics {
		initPerSessionMetrics(registry)
	}

	abrSimInfo.WithLabelValues(cfg.Controller, cfg.ThroughputPredictor, cfg.ViewPredictor).Set(1)
	abrSimTargetSessions.Set(float64(cfg.TargetSessions))

	return c
}

// AggregatedStatsUpdate holds stats for updating metrics. This is a
// subset of simstats.AggregatedStats, to avoid a circular import.
type AggregatedStatsUpdate struct {
	ActiveSessions int

	SessionsCompleted int64
	SessionsFailed    int64

	RebufferingP50Seconds  float64
	RebufferingP95Seconds  float64
	RebufferingP99Seconds  float64
	RebufferingPeakSeconds float64

	BitrateP50Mbps float64
	BitrateP95Mbps float64
	BitrateP99Mbps float64

	DownloadedMB float64
	WastedMB     float64

	SessionErrors map[string]int64 // category -> count

	PerSessionStats []PerSessionStatsUpdate
}

// PerSessionStatsUpdate holds per-session stats for Tier 2 metrics.
type PerSessionStatsUpdate struct {
	SessionIndex       int
	RebufferingSeconds float64
	AverageBitrateMbps float64
}

// RecordStats updates all metrics from an aggregated-stats snapshot.
func (c *Collector) RecordStats(stats *AggregatedStatsUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	abrSimActiveSessions.Set(float64(stats.ActiveSessions))

	progress := float64(0)
	if c.targetSessions > 0 {
		done := stats.SessionsCompleted + stats.SessionsFailed
		progress = float64(done) / float64(c.targetSessions)
		if progress > 1.0 {
			progress = 1.0
		}
	}
	abrSimProgress.Set(progress)
	abrSimElapsedSeconds.Set(time.Since(c.startTime).Seconds())

	completedDelta := stats.SessionsCompleted - c.prevSessionsCompleted
	failedDelta := stats.SessionsFailed - c.prevSessionsFailed
	if completedDelta > 0 {
		abrSimSessionsCompletedTotal.Add(float64(completedDelta))
	}
	if failedDelta > 0 {
		abrSimSessionsFailedTotal.Add(float64(failedDelta))
	}
	c.prevSessionsCompleted = stats.SessionsCompleted
	c.prevSessionsFailed = stats.SessionsFailed

	elapsed := time.Since(c.startTime).Seconds()
	if elapsed > 0 {
		abrSimSessionsPerSecond.Set(float64(stats.SessionsCompleted+stats.SessionsFailed) / elapsed)
	}

	abrSimRebufferingP50Seconds.Set(stats.RebufferingP50Seconds)
	abrSimRebufferingP95Seconds.Set(stats.RebufferingP95Seconds)
	abrSimRebufferingP99Seconds.Set(stats.RebufferingP99Seconds)
	abrSimRebufferingPeakSeconds.Set(stats.RebufferingPeakSeconds)

	abrSimBitrateP50Mbps.Set(stats.BitrateP50Mbps)
	abrSimBitrateP95Mbps.Set(stats.BitrateP95Mbps)
	abrSimBitrateP99Mbps.Set(stats.BitrateP99Mbps)

	downloadedDelta := stats.DownloadedMB - c.prevDownloadedMB
	wastedDelta := stats.WastedMB - c.prevWastedMB
	if downloadedDelta > 0 {
		abrSimDownloadedMBTotal.Add(downloadedDelta)
	}
	if wastedDelta > 0 {
		abrSimWastedMBTotal.Add(wastedDelta)
	}
	c.prevDownloadedMB = stats.DownloadedMB
	c.prevWastedMB = stats.WastedMB

	for category, count := range stats.SessionErrors {
		prevCount := c.prevSessionErrors[category]
		delta := count - prevCount
		if delta > 0 {
			abrSimSessionErrorsTotal.WithLabelValues(category).Add(float64(delta))
		}
		c.prevSessionErrors[category] = count
	}

	if c.perSessionEnabled && len(stats.PerSessionStats) > 0 {
		for _, s := range stats.PerSessionStats {
			id := strconv.Itoa(s.SessionIndex)
			abrSimSessionRebufferingSeconds.WithLabelValues(id).Set(s.RebufferingSeconds)
			abrSimSessionBitrateMbps.WithLabelValues(id).Set(s.AverageBitrateMbps)
			c.registeredSessionIDs[s.SessionIndex] = struct{}{}
		}
	}
}

// RecordSessionResult records one completed session's observation into
// the histograms (must be called once per session, independently of
// RecordStats's periodic snapshots).
func (c *Collector) RecordSessionResult(rebufferingSeconds, averageBitrateMbps float64) {
	abrSimRebufferingSeconds.Observe(rebufferingSeconds)
	abrSimBitrateMbps.Observe(averageBitrateMbps)
}

// RemoveSession removes per-session metrics for a session. Only
// relevant when per-session metrics are enabled.
func (c *Collector) RemoveSession(sessionIndex int) {
	if !c.perSessionEnabled {
		return
	}

	c.mu.Lock()
	delete(c.registeredSessionIDs, sessionIndex)
	c.mu.Unlock()

	id := strconv.Itoa(sessionIndex)
	abrSimSessionRebufferingSeconds.DeleteLabelValues(id)
	abrSimSessionBitrateMbps.DeleteLabelValues(id)
}

// PerSessionEnabled returns whether per-session metrics are enabled.
func (c *Collector) PerSessionEnabled() bool {
	return c.perSessionEnabled
}

// =============================================================================
// Summary Generation
// =============================================================================

// Summary holds the data for generating an exit summary.
type Summary struct {
	Duration       time.Duration
	TargetSessions int
}

// GenerateSummary creates a summary of the run.
func (c *Collector) GenerateSummary() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Summary{
		Duration:       time.Since(c.startTime),
		TargetSessions: c.targetSessions,
	}
}

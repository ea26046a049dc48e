// Package simstats — this file implements Aggregator, which folds
// per-session outcomes into batch-wide statistics: rebuffering and
// bitrate-quality percentiles (via tdigest, for constant memory
// regardless of batch size), totals, and a peak-rebuffering tracker.
// Grounded on the teacher's internal/stats.StatsAggregator: sync.Map for
// lock-free session registration, and a CAS loop over an atomic.Uint64
// holding float64 bits for the lock-free peak tracker.
package simstats

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/influxdata/tdigest"
)

// AggregatedStats holds a snapshot of batch-wide statistics.
type AggregatedStats struct {
	Timestamp time.Time

	SessionsRun    int
	SessionsFailed int

	TotalRebufferingSeconds float64
	RebufferingP50          float64
	RebufferingP95          float64
	RebufferingP99          float64
	PeakRebufferingSeconds  float64

	AverageBitrateMbps float64
	BitrateP50         float64
	BitrateP95         float64
	BitrateP99         float64

	TotalDownloadedMB float64
	TotalWastedMB     float64

	PerSessionSummaries []Summary
}

// Aggregator aggregates SessionStats across an entire batch.
//
// Thread-safe: all methods may be called concurrently from the batch's
// worker pool.
type Aggregator struct {
	sessions  sync.Map // map[int]*SessionStats
	startTime time.Time

	digestMu       sync.Mutex
	rebufferDigest *tdigest.TDigest
	bitrateDigest  *tdigest.TDigest

	sessionsRun    atomic.Int64
	sessionsFailed atomic.Int64

	totalsMu          sync.Mutex
	totalRebuffering  float64
	totalDownloadedMB float64
	totalWastedMB     float64

	// peakRebufferingSeconds uses atomic.Uint64 with bit manipulation
	// for lock-free max tracking, matching the teacher's peak-drop-rate
	// idiom.
	peakRebufferingSeconds atomic.Uint64
}

// NewAggregator creates a new batch Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		startTime:      time.Now(),
		rebufferDigest: tdigest.NewWithCompression(100),
		bitrateDigest:  tdigest.NewWithCompression(100),
	}
}

// RecordSession registers a completed session's stats for aggregation.
func (a *Aggregator) RecordSession(stats *SessionStats) {
	a.sessions.Store(stats.SessionIndex, stats)

	summary := stats.GetSummary()
	if summary.Failed {
		a.sessionsFailed.Add(1)
		return
	}
	a.sessionsRun.Add(1)

	a.digestMu.Lock()
	a.rebufferDigest.Add(summary.RebufferingSeconds, 1)
	a.bitrateDigest.Add(summary.AverageBitrateMbps, 1)
	a.digestMu.Unlock()

	a.totalsMu.Lock()
	a.totalRebuffering += summary.RebufferingSeconds
	a.totalDownloadedMB += summary.DownloadedMB
	a.totalWastedMB += summary.WastedMB
	a.totalsMu.Unlock()

	a.updatePeakRebuffering(summary.RebufferingSeconds)
}

// updatePeakRebuffering performs a lock-free max update via CAS retry.
func (a *Aggregator) updatePeakRebuffering(value float64) {
	for {
		oldBits := a.peakRebufferingSeconds.Load()
		oldValue := math.Float64frombits(oldBits)
		if value <= oldValue {
			return
		}
		newBits := math.Float64bits(value)
		if a.peakRebufferingSeconds.CompareAndSwap(oldBits, newBits) {
			return
		}
	}
}

// SessionCount returns the number of sessions registered so far
// (succeeded or failed).
func (a *Aggregator) SessionCount() int {
	count := 0
	a.sessions.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Aggregate computes a snapshot of batch-wide statistics.
func (a *Aggregator) Aggregate() *AggregatedStats {
	a.digestMu.Lock()
	rebufferDigest := a.rebufferDigest
	bitrateDigest := a.bitrateDigest
	a.digestMu.Unlock()

	a.totalsMu.Lock()
	totalRebuffering := a.totalRebuffering
	totalDownloadedMB := a.totalDownloadedMB
	totalWastedMB := a.totalWastedMB
	a.totalsMu.Unlock()

	sessionsRun := int(a.sessionsRun.Load())
	sessionsFailed := int(a.sessionsFailed.Load())

	result := &AggregatedStats{
		Timestamp:               time.Now(),
		SessionsRun:             sessionsRun,
		SessionsFailed:          sessionsFailed,
		TotalRebufferingSeconds: totalRebuffering,
		TotalDownloadedMB:       totalDownloadedMB,
		TotalWastedMB:           totalWastedMB,
		PeakRebufferingSeconds:  math.Float64frombits(a.peakRebufferingSeconds.Load()),
		PerSessionSummaries:     a.GetAllSessionSummaries(),
	}

	if sessionsRun > 0 {
		result.RebufferingP50 = rebufferDigest.Quantile(0.50)
		result.RebufferingP95 = rebufferDigest.Quantile(0.95)
		result.RebufferingP99 = rebufferDigest.Quantile(0.99)
		result.BitrateP50 = bitrateDigest.Quantile(0.50)
		result.BitrateP95 = bitrateDigest.Quantile(0.95)
		result.BitrateP99 = bitrateDigest.Quantile(0.99)
		result.AverageBitrateMbps = sumBitrate(result.PerSessionSummaries) / float64(sessionsRun)
	}

	return result
}

func sumBitrate(summaries []Summary) float64 {
	var sum float64
	for _, s := range summaries {
		if !s.Failed {
			sum += s.AverageBitrateMbps
		}
	}
	return sum
}

// StartTime returns when the aggregator was created.
func (a *Aggregator) StartTime() time.Time {
	return a.startTime
}

// Elapsed returns the duration since the aggregator was created.
func (a *Aggregator) Elapsed() time.Duration {
	return time.Since(a.startTime)
}

// GetAllSessionSummaries returns summaries for every registered session.
func (a *Aggregator) GetAllSessionSummaries() []Summary {
	summaries := make([]Summary, 0)
	a.sessions.Range(func(_, value any) bool {
		summaries = append(summaries, value.(*SessionStats).GetSummary())
		return true
	})
	return summaries
}

// SessionErrors returns the DataError (or other) errors recorded for
// every failed session, keyed by session index.
func (a *Aggregator) SessionErrors() map[int]error {
	errs := make(map[int]error)
	a.sessions.Range(func(key, value any) bool {
		if err := value.(*SessionStats).Err(); err != nil {
			errs[key.(int)] = err
		}
		return true
	})
	return errs
}

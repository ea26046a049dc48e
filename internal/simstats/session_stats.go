// Package simstats provides per-session and aggregated statistics for a
// multiview-abr-sim batch run.
//
// This file implements SessionStats which captures the outcome of a
// single completed streaming session: rebuffering, delivered bitrate
// quality, and data volume. Grounded on the teacher's
// internal/stats.ClientStats — the same "per-unit-of-work stats object,
// folded into a lock-free aggregator" shape — but simplified from an
// incrementally-updated, many-writer object into a write-once result
// recorder, since a session's SessionResult is produced atomically by
// one goroutine rather than streamed from concurrent event callbacks.
package simstats

import (
	"sync"

	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
)

// SessionStats holds the recorded outcome of one streaming session.
//
// Thread-safe: Record/RecordError may only be called once, but the
// accessor methods may be read concurrently with each other afterward.
type SessionStats struct {
	SessionIndex int

	mu                 sync.Mutex
	recorded           bool
	rebufferingSeconds float64
	downloadedMB       float64
	wastedMB           float64
	averageBitrateMbps float64
	err                error
}

// NewSessionStats creates stats for the session at the given batch index.
func NewSessionStats(sessionIndex int) *SessionStats {
	return &SessionStats{SessionIndex: sessionIndex}
}

// Record captures a completed session's result.
func (s *SessionStats) Record(cfg multiviewabr.StreamingConfig, result *multiviewabr.SessionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recorded = true
	s.rebufferingSeconds = result.RebufferingSeconds
	s.downloadedMB = result.DownloadedMB
	s.wastedMB = result.RawWastedMB
	s.averageBitrateMbps = averageBitrateMbps(result.BufferedBitratesMbps)
}

// RecordError captures a session that aborted before producing a result.
func (s *SessionStats) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// averageBitrateMbps is the mean of every buffered rung rate across
// every group and stream in the session.
func averageBitrateMbps(grid multiviewabr.Grid2D) float64 {
	if grid.Rows == 0 || grid.Cols == 0 || len(grid.Data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range grid.Data {
		sum += v
	}
	return sum / float64(len(grid.Data))
}

// Err returns the error that aborted the session, or nil if it
// completed (or hasn't been recorded yet).
func (s *SessionStats) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Summary is an immutable snapshot of a session's recorded outcome.
type Summary struct {
	SessionIndex       int
	Failed             bool
	RebufferingSeconds float64
	AverageBitrateMbps float64
	DownloadedMB       float64
	WastedMB           float64
}

// GetSummary returns a snapshot of the session's outcome.
func (s *SessionStats) GetSummary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Summary{
		SessionIndex:       s.SessionIndex,
		Failed:             s.err != nil,
		RebufferingSeconds: s.rebufferingSeconds,
		AverageBitrateMbps: s.averageBitrateMbps,
		DownloadedMB:       s.downloadedMB,
		WastedMB:           s.wastedMB,
	}
}

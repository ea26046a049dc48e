// Package network implements the exact-integration network simulator:
// a piecewise-constant throughput trace the ABR controller downloads
// against. Grounded on the clock+series+pure-arithmetic shape of the
// teacher's internal/timeseries.ThroughputTracker, and on the pinned
// scenarios in original_source/tests/NetworkSimulatorTest.cpp.
package network

import (
	"math"

	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
)

// Simulator replays a NetworkSeries against download/wait requests,
// tracking elapsed simulated time exactly (no fixed-step quantization):
// a download spanning a tick boundary accumulates bytes at each tick's
// rate for exactly the fraction of the tick it occupies.
type Simulator struct {
	tickSeconds float64
	rateMBps    []float64 // precomputed throughputMbps/8 per tick
	elapsed     float64   // current simulated time, seconds
}

// New builds a Simulator over series. series must already be validated
// (see multiviewabr.NetworkSeries.Validate).
func New(series multiviewabr.NetworkSeries) *Simulator {
	rates := make([]float64, len(series.ThroughputMbps))
	for i, mbps := range series.ThroughputMbps {
		rates[i] = mbps / 8.0
	}
	return &Simulator{tickSeconds: series.TickSeconds, rateMBps: rates}
}

// Elapsed returns the total simulated time consumed so far.
func (s *Simulator) Elapsed() float64 { return s.elapsed }

// tickIndexAt returns the series index in effect at simulated time t,
// wrapping cyclically once t passes the series' natural length (see
// DESIGN.md Open-Question #1 — the original's pinned test values are
// only reproducible under cyclic wraparound, not hold-last).
func (s *Simulator) tickIndexAt(t float64) int {
	n := len(s.rateMBps)
	idx := int(math.Floor(t / s.tickSeconds))
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

// WaitFor advances simulated time by seconds without downloading
// anything (used by controllers that deliberately pace downloads).
func (s *Simulator) WaitFor(seconds float64) {
	if seconds <= 0 {
		return
	}
	s.elapsed += seconds
}

// Download consumes sizeMB of data at the series' current and
// subsequent rates, advancing simulated time exactly to the instant the
// download completes, and returns the elapsed seconds and MB actually
// transferred (MB always equals sizeMB when unbounded).
func (s *Simulator) Download(sizeMB float64) multiviewabr.TimedValue {
	return s.download(sizeMB, math.Inf(1))
}

// DownloadCapped behaves like Download but stops after at most
// maxSeconds of simulated time even if sizeMB has not been fully
// transferred; the returned MB reflects only what was actually moved.
func (s *Simulator) DownloadCapped(sizeMB, maxSeconds float64) multiviewabr.TimedValue {
	return s.download(sizeMB, maxSeconds)
}

func (s *Simulator) download(sizeMB, maxSeconds float64) multiviewabr.TimedValue {
	if sizeMB <= 0 {
		return multiviewabr.TimedValue{Seconds: 0, MB: 0}
	}

	remaining := sizeMB
	elapsedThisCall := 0.0
	t := s.elapsed

	for remaining > 1e-12 {
		idx := s.tickIndexAt(t)
		rate := s.rateMBps[idx] // MB/s

		tickStart := float64(int(math.Floor(t/s.tickSeconds))) * s.tickSeconds
		tickRemaining := s.tickSeconds - (t - tickStart)

		var timeBudget float64
		if !math.IsInf(maxSeconds, 1) {
			timeBudget = maxSeconds - elapsedThisCall
			if timeBudget <= 0 {
				break
			}
		} else {
			timeBudget = math.Inf(1)
		}

		window := tickRemaining
		if window > timeBudget {
			window = timeBudget
		}

		if rate <= 0 {
			// Zero-throughput tick: consume the whole window (or budget)
			// with no bytes transferred, then move to the next tick.
			t += window
			elapsedThisCall += window
			continue
		}

		mbAvailableInWindow := rate * window
		if mbAvailableInWindow >= remaining {
			// Download completes partway through this window.
			dt := remaining / rate
			t += dt
			elapsedThisCall += dt
			remaining = 0
			break
		}

		// Consume the whole window and continue into the next tick.
		remaining -= mbAvailableInWindow
		t += window
		elapsedThisCall += window
	}

	s.elapsed = t
	return multiviewabr.TimedValue{Seconds: elapsedThisCall, MB: sizeMB - remaining}
}

// Package batch fans a set of independent streaming sessions out across
// a bounded worker pool and collects their results, isolating each
// session's failure from the rest of the batch. Adapted from the
// goroutine-per-client, bounded-concurrency shape of the teacher's
// internal/orchestrator.Orchestrator — but sessions here are pure,
// in-memory, CPU-bound computations with no process lifecycle, ramp-up,
// or restart policy to manage (see DESIGN.md for what was dropped and
// why).
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/randomizedcoder/multiview-abr-sim/internal/controller"
	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
	"github.com/randomizedcoder/multiview-abr-sim/internal/simulator"
	"github.com/randomizedcoder/multiview-abr-sim/internal/throughput"
	"github.com/randomizedcoder/multiview-abr-sim/internal/view"
)

// SessionError pairs a batch session's index with the error that
// aborted it, so one session's DataError never corrupts another's
// accounting (spec.md §5, §7).
type SessionError struct {
	Index int
	Err   error
}

// Session is one unit of work: the inputs for a single simulated
// streaming session, plus fresh predictor/controller instances (each
// session owns its own — they carry mutable state and must not be
// shared across goroutines).
type Session struct {
	Config          multiviewabr.StreamingConfig
	Network         multiviewabr.NetworkSeries
	PrimaryView     multiviewabr.PrimaryStreamSeries
	DurationSeconds float64

	NewController func() controller.ABRController
	NewThroughput func() throughput.Predictor
	NewView       func() view.Predictor

	CaptureViewDistributions bool
}

// Options configures a batch Run.
type Options struct {
	// Workers bounds how many sessions run concurrently. Zero or
	// negative selects runtime.NumCPU().
	Workers int
	// OnSessionDone, if set, is called after each session completes
	// (successfully or not) — used to drive a progress bar or live TUI.
	// Called from arbitrary goroutines; implementations must be
	// safe for concurrent use.
	OnSessionDone func(index int, result *multiviewabr.SessionResult, err error)
}

// Run executes every session in sessions, honoring ctx for cooperative
// cancellation, and returns the per-session results (nil at an index
// whose session failed) alongside every SessionError encountered.
// Results are written into session-disjoint slots, so no locking is
// needed across the worker pool itself.
func Run(ctx context.Context, sessions []Session, opts Options) ([]*multiviewabr.SessionResult, []SessionError) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(sessions) {
		workers = len(sessions)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*multiviewabr.SessionResult, len(sessions))

	var mu sync.Mutex
	var sessionErrors []SessionError

	indices := make(chan int, len(sessions))
	for i := range sessions {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				select {
				case <-ctx.Done():
					mu.Lock()
					sessionErrors = append(sessionErrors, SessionError{Index: idx, Err: ctx.Err()})
					mu.Unlock()
					continue
				default:
				}

				result, err := runOne(sessions[idx])
				if err != nil {
					mu.Lock()
					sessionErrors = append(sessionErrors, SessionError{Index: idx, Err: err})
					mu.Unlock()
				} else {
					results[idx] = result
				}

				if opts.OnSessionDone != nil {
					opts.OnSessionDone(idx, result, err)
				}
			}
		}()
	}
	wg.Wait()

	return results, sessionErrors
}

func runOne(s Session) (*multiviewabr.SessionResult, error) {
	return simulator.Run(simulator.Inputs{
		Config:                   s.Config,
		Network:                  s.Network,
		PrimaryView:              s.PrimaryView,
		DurationSeconds:          s.DurationSeconds,
		Controller:               s.NewController(),
		Throughput:               s.NewThroughput(),
		View:                     s.NewView(),
		CaptureViewDistributions: s.CaptureViewDistributions,
	})
}

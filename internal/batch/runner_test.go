package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/randomizedcoder/multiview-abr-sim/internal/controller"
	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
	"github.com/randomizedcoder/multiview-abr-sim/internal/throughput"
	"github.com/randomizedcoder/multiview-abr-sim/internal/view"
)

func validConfig() multiviewabr.StreamingConfig {
	return multiviewabr.StreamingConfig{
		SegmentSeconds:   1,
		BitratesMbps:     []float64{1, 2, 4},
		StreamCount:      1,
		RebufferSafety:   0.75,
		MaxBufferSeconds: 5,
	}
}

func validSession() Session {
	return Session{
		Config:          validConfig(),
		Network:         multiviewabr.NetworkSeries{TickSeconds: 1, ThroughputMbps: []float64{8}},
		PrimaryView:     multiviewabr.PrimaryStreamSeries{TickSeconds: 1, ViewIDs: []int{0}},
		DurationSeconds: 2,
		NewController:   func() controller.ABRController { return controller.NewThroughputBasedController(controller.ThroughputBasedControllerOptions{}) },
		NewThroughput:   func() throughput.Predictor { return throughput.NewMovingAveragePredictor(0) },
		NewView:         func() view.Predictor { return view.NewStaticPredictor(1, 0) },
	}
}

func TestRun_AllSessionsSucceed(t *testing.T) {
	sessions := []Session{validSession(), validSession(), validSession()}
	results, errs := Run(context.Background(), sessions, Options{Workers: 2})

	if len(errs) != 0 {
		t.Fatalf("unexpected session errors: %+v", errs)
	}
	if len(results) != len(sessions) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(sessions))
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("results[%d] is nil, want a populated SessionResult", i)
		}
	}
}

func TestRun_PerSessionErrorIsolation(t *testing.T) {
	good := validSession()
	bad := validSession()
	bad.Config = multiviewabr.StreamingConfig{} // fails Validate

	sessions := []Session{good, bad, good}
	results, errs := Run(context.Background(), sessions, Options{Workers: 2})

	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1, got %+v", len(errs), errs)
	}
	if errs[0].Index != 1 {
		t.Errorf("failed session index = %d, want 1", errs[0].Index)
	}
	if results[0] == nil || results[2] == nil {
		t.Error("good sessions at index 0 and 2 should have results")
	}
	if results[1] != nil {
		t.Error("bad session at index 1 should leave a nil result")
	}
}

func TestRun_OnSessionDoneCalledForEverySession(t *testing.T) {
	sessions := []Session{validSession(), validSession(), validSession(), validSession()}

	var mu sync.Mutex
	seen := make(map[int]bool)
	Run(context.Background(), sessions, Options{
		Workers: 2,
		OnSessionDone: func(index int, result *multiviewabr.SessionResult, err error) {
			mu.Lock()
			seen[index] = true
			mu.Unlock()
		},
	})

	if len(seen) != len(sessions) {
		t.Fatalf("OnSessionDone fired for %d sessions, want %d", len(seen), len(sessions))
	}
}

func TestRun_WorkerCountBoundsConcurrency(t *testing.T) {
	const workers = 3
	sessions := make([]Session, 20)
	for i := range sessions {
		sessions[i] = validSession()
	}

	var current, peak int64
	sessions2 := make([]Session, len(sessions))
	for i, s := range sessions {
		s := s
		s.NewController = func() controller.ABRController {
			c := atomic.AddInt64(&current, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if c <= p || atomic.CompareAndSwapInt64(&peak, p, c) {
					break
				}
			}
			time.Sleep(time.Millisecond) // hold the slot open so concurrent callers overlap
			atomic.AddInt64(&current, -1)
			return controller.NewThroughputBasedController(controller.ThroughputBasedControllerOptions{})
		}
		sessions2[i] = s
	}

	Run(context.Background(), sessions2, Options{Workers: workers})

	if atomic.LoadInt64(&peak) > int64(workers) {
		t.Errorf("observed peak concurrency %d, want <= %d", peak, workers)
	}
}

func TestRun_EmptySessionsReturnsEmptyResults(t *testing.T) {
	results, errs := Run(context.Background(), nil, Options{Workers: 4})
	if len(results) != 0 || len(errs) != 0 {
		t.Errorf("Run(nil) = (%v, %v), want empty slices", results, errs)
	}
}

func TestRun_CancelledContextSurfacesAsSessionErrors(t *testing.T) {
	sessions := []Session{validSession(), validSession()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel before Run starts processing

	_, errs := Run(ctx, sessions, Options{Workers: 1})
	if len(errs) == 0 {
		t.Error("expected at least one SessionError from a pre-cancelled context")
	}
	for _, e := range errs {
		if e.Err != context.Canceled {
			t.Errorf("SessionError.Err = %v, want context.Canceled", e.Err)
		}
	}
}

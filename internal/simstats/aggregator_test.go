package simstats

import (
	"errors"
	"testing"

	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
)

func sessionResult(rebufferSeconds, bitrateMbps, downloadedMB float64) *multiviewabr.SessionResult {
	grid := multiviewabr.NewGrid2D(1, 1)
	grid.Set(0, 0, bitrateMbps)
	return &multiviewabr.SessionResult{
		RebufferingSeconds:   rebufferSeconds,
		BufferedBitratesMbps: grid,
		DownloadedMB:         downloadedMB,
	}
}

func TestAggregator_Aggregate_Empty(t *testing.T) {
	agg := NewAggregator()
	result := agg.Aggregate()

	if result.SessionsRun != 0 || result.SessionsFailed != 0 {
		t.Errorf("expected zero sessions, got run=%d failed=%d", result.SessionsRun, result.SessionsFailed)
	}
}

func TestAggregator_RecordSession(t *testing.T) {
	agg := NewAggregator()

	for i, rebuffer := range []float64{0, 1, 2, 5} {
		stats := NewSessionStats(i)
		stats.Record(multiviewabr.StreamingConfig{}, sessionResult(rebuffer, 4.0, 50))
		agg.RecordSession(stats)
	}

	result := agg.Aggregate()
	if result.SessionsRun != 4 {
		t.Fatalf("SessionsRun = %d, want 4", result.SessionsRun)
	}
	if result.SessionsFailed != 0 {
		t.Errorf("SessionsFailed = %d, want 0", result.SessionsFailed)
	}
	wantTotal := 0.0 + 1 + 2 + 5
	if result.TotalRebufferingSeconds != wantTotal {
		t.Errorf("TotalRebufferingSeconds = %v, want %v", result.TotalRebufferingSeconds, wantTotal)
	}
	if result.PeakRebufferingSeconds != 5 {
		t.Errorf("PeakRebufferingSeconds = %v, want 5", result.PeakRebufferingSeconds)
	}
	if result.AverageBitrateMbps != 4.0 {
		t.Errorf("AverageBitrateMbps = %v, want 4.0", result.AverageBitrateMbps)
	}
	wantDownloaded := 50.0 * 4
	if result.TotalDownloadedMB != wantDownloaded {
		t.Errorf("TotalDownloadedMB = %v, want %v", result.TotalDownloadedMB, wantDownloaded)
	}
}

func TestAggregator_RecordSession_Failure(t *testing.T) {
	agg := NewAggregator()

	ok := NewSessionStats(0)
	ok.Record(multiviewabr.StreamingConfig{}, sessionResult(0, 4.0, 10))
	agg.RecordSession(ok)

	failed := NewSessionStats(1)
	failed.RecordError(errors.New("bad trace"))
	agg.RecordSession(failed)

	result := agg.Aggregate()
	if result.SessionsRun != 1 {
		t.Errorf("SessionsRun = %d, want 1", result.SessionsRun)
	}
	if result.SessionsFailed != 1 {
		t.Errorf("SessionsFailed = %d, want 1", result.SessionsFailed)
	}

	errs := agg.SessionErrors()
	if len(errs) != 1 {
		t.Fatalf("SessionErrors() = %v, want 1 entry", errs)
	}
	if _, ok := errs[1]; !ok {
		t.Errorf("SessionErrors() missing index 1: %v", errs)
	}
}

func TestAggregator_PeakRebufferingSeconds_ConcurrentUpdates(t *testing.T) {
	agg := NewAggregator()

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			stats := NewSessionStats(i)
			stats.Record(multiviewabr.StreamingConfig{}, sessionResult(float64(i), 1.0, 1))
			agg.RecordSession(stats)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	result := agg.Aggregate()
	if result.PeakRebufferingSeconds != 19 {
		t.Errorf("PeakRebufferingSeconds = %v, want 19", result.PeakRebufferingSeconds)
	}
	if result.SessionsRun != 20 {
		t.Errorf("SessionsRun = %d, want 20", result.SessionsRun)
	}
}

package simstats

import (
	"errors"
	"testing"

	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
)

func TestSessionStats_Record(t *testing.T) {
	grid := multiviewabr.NewGrid2D(2, 2)
	grid.Set(0, 0, 1.0)
	grid.Set(0, 1, 2.0)
	grid.Set(1, 0, 4.0)
	grid.Set(1, 1, 8.0)

	result := &multiviewabr.SessionResult{
		RebufferingSeconds:   1.5,
		BufferedBitratesMbps: grid,
		DownloadedMB:         100,
		RawWastedMB:          5,
	}

	stats := NewSessionStats(3)
	stats.Record(multiviewabr.StreamingConfig{}, result)

	summary := stats.GetSummary()
	if summary.SessionIndex != 3 {
		t.Errorf("SessionIndex = %d, want 3", summary.SessionIndex)
	}
	if summary.Failed {
		t.Error("Failed = true, want false")
	}
	if summary.RebufferingSeconds != 1.5 {
		t.Errorf("RebufferingSeconds = %v, want 1.5", summary.RebufferingSeconds)
	}
	wantAvg := (1.0 + 2.0 + 4.0 + 8.0) / 4.0
	if summary.AverageBitrateMbps != wantAvg {
		t.Errorf("AverageBitrateMbps = %v, want %v", summary.AverageBitrateMbps, wantAvg)
	}
	if summary.DownloadedMB != 100 {
		t.Errorf("DownloadedMB = %v, want 100", summary.DownloadedMB)
	}
	if summary.WastedMB != 5 {
		t.Errorf("WastedMB = %v, want 5", summary.WastedMB)
	}
}

func TestSessionStats_RecordError(t *testing.T) {
	stats := NewSessionStats(0)
	wantErr := errors.New("boom")
	stats.RecordError(wantErr)

	if got := stats.Err(); got != wantErr {
		t.Errorf("Err() = %v, want %v", got, wantErr)
	}
	if summary := stats.GetSummary(); !summary.Failed {
		t.Error("GetSummary().Failed = false, want true")
	}
}

func TestAverageBitrateMbps_EmptyGrid(t *testing.T) {
	if got := averageBitrateMbps(multiviewabr.Grid2D{}); got != 0 {
		t.Errorf("averageBitrateMbps(empty) = %v, want 0", got)
	}
}

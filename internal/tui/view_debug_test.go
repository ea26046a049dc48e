package tui

import (
	"strings"
	"testing"

	"github.com/randomizedcoder/multiview-abr-sim/internal/simstats"
)

// TestRenderDetailedView tests that the per-session detail view renders correctly.
func TestRenderDetailedView(t *testing.T) {
	model := New(Config{
		TargetSessions: 10,
		ManifestPath:   "traces/manifest.json",
		MetricsAddr:    "localhost:9090",
		LadderTopMbps:  8,
	})
	model.width = 100
	model.height = 50
	model.stats = &simstats.AggregatedStats{
		SessionsRun:    9,
		SessionsFailed: 1,
		PerSessionSummaries: []simstats.Summary{
			{SessionIndex: 0, RebufferingSeconds: 0.5, AverageBitrateMbps: 4.0, DownloadedMB: 120},
			{SessionIndex: 1, Failed: true},
		},
	}

	output := model.renderDetailedView()
	if output == "" {
		t.Fatal("renderDetailedView() returned empty string")
	}
	if !strings.Contains(output, "Per-Session Results") {
		t.Error("expected detailed view to contain section header")
	}
}

// TestRenderSessionTable_Empty tests the empty-state message.
func TestRenderSessionTable_Empty(t *testing.T) {
	model := New(Config{TargetSessions: 10})
	model.width = 80
	model.height = 24
	model.stats = &simstats.AggregatedStats{}

	output := model.renderSessionTable()
	if !strings.Contains(output, "No per-session data available") {
		t.Errorf("expected empty-state message, got: %s", output)
	}
}

// TestRenderSessionTable_Truncation tests that the table truncates beyond the screen height.
func TestRenderSessionTable_Truncation(t *testing.T) {
	summaries := make([]simstats.Summary, 50)
	for i := range summaries {
		summaries[i] = simstats.Summary{SessionIndex: i, AverageBitrateMbps: 2.0}
	}

	model := New(Config{TargetSessions: 50})
	model.width = 100
	model.height = 15 // small height forces truncation
	model.stats = &simstats.AggregatedStats{SessionsRun: 50, PerSessionSummaries: summaries}

	output := model.renderSessionTable()
	if !strings.Contains(output, "more sessions") {
		t.Errorf("expected truncation message, got: %s", output)
	}
}

// TestRenderFailedSessions tests that failed session indices are listed.
func TestRenderFailedSessions(t *testing.T) {
	model := New(Config{TargetSessions: 10})
	model.width = 80
	model.height = 24
	model.stats = &simstats.AggregatedStats{
		SessionsRun:    8,
		SessionsFailed: 2,
		PerSessionSummaries: []simstats.Summary{
			{SessionIndex: 3, Failed: true},
			{SessionIndex: 7, Failed: true},
		},
	}

	output := model.renderFailedSessions()
	if !strings.Contains(output, "3") || !strings.Contains(output, "7") {
		t.Errorf("expected failed session indices in output, got: %s", output)
	}
}

// TestHasFailures tests the failure-detection helper.
func TestHasFailures(t *testing.T) {
	tests := []struct {
		name  string
		stats *simstats.AggregatedStats
		want  bool
	}{
		{"nil stats", nil, false},
		{"no failures", &simstats.AggregatedStats{SessionsRun: 10}, false},
		{"some failures", &simstats.AggregatedStats{SessionsRun: 8, SessionsFailed: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(Config{TargetSessions: 10})
			model.stats = tt.stats
			if got := model.hasFailures(); got != tt.want {
				t.Errorf("hasFailures() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestRenderSummaryView_WithFailures tests that the summary view includes a
// failed-sessions section only when failures are present.
func TestRenderSummaryView_WithFailures(t *testing.T) {
	model := New(Config{TargetSessions: 10, LadderTopMbps: 8})
	model.width = 100
	model.height = 40
	model.stats = &simstats.AggregatedStats{
		SessionsRun:    8,
		SessionsFailed: 2,
		PerSessionSummaries: []simstats.Summary{
			{SessionIndex: 3, Failed: true},
			{SessionIndex: 7, Failed: true},
		},
	}

	output := model.renderSummaryView()
	if !strings.Contains(output, "Failed Sessions") {
		t.Error("expected summary view to include failed sessions section")
	}
}

func TestRenderSummaryView_NoFailures(t *testing.T) {
	model := New(Config{TargetSessions: 10, LadderTopMbps: 8})
	model.width = 100
	model.height = 40
	model.stats = &simstats.AggregatedStats{SessionsRun: 10}

	output := model.renderSummaryView()
	if strings.Contains(output, "Failed Sessions") {
		t.Error("expected summary view to omit failed sessions section when there are none")
	}
}

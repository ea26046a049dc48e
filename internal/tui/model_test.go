package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/multiview-abr-sim/internal/simstats"
)

// =============================================================================
// Mock StatsSource
// =============================================================================

type mockStatsSource struct {
	stats *simstats.AggregatedStats
}

func (m *mockStatsSource) GetAggregatedStats() *simstats.AggregatedStats {
	return m.stats
}

// =============================================================================
// Tests: New
// =============================================================================

func TestNew(t *testing.T) {
	cfg := Config{
		TargetSessions: 100,
		ManifestPath:   "traces/manifest.json",
		MetricsAddr:    "localhost:9090",
	}

	model := New(cfg)

	if model.targetSessions != 100 {
		t.Errorf("targetSessions = %d, want 100", model.targetSessions)
	}
	if model.manifestPath != "traces/manifest.json" {
		t.Errorf("manifestPath = %s, want traces/manifest.json", model.manifestPath)
	}
	if model.metricsAddr != "localhost:9090" {
		t.Errorf("metricsAddr = %s, want localhost:9090", model.metricsAddr)
	}
	if model.width != 80 {
		t.Errorf("width = %d, want 80", model.width)
	}
	if model.height != 24 {
		t.Errorf("height = %d, want 24", model.height)
	}
}

// =============================================================================
// Tests: Init
// =============================================================================

func TestModel_Init(t *testing.T) {
	model := New(Config{TargetSessions: 10})
	cmd := model.Init()

	if cmd == nil {
		t.Error("Init() returned nil cmd")
	}
}

// =============================================================================
// Tests: Update - Key Messages
// =============================================================================

func TestModel_Update_QuitKeys(t *testing.T) {
	tests := []struct {
		key      string
		wantQuit bool
	}{
		{"q", true},
		{"ctrl+c", true},
		{"esc", true},
		{"d", false},
		{"r", false},
		{"x", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			model := New(Config{TargetSessions: 10})
			msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)}
			if tt.key == "ctrl+c" {
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			} else if tt.key == "esc" {
				msg = tea.KeyMsg{Type: tea.KeyEsc}
			}

			newModel, cmd := model.Update(msg)
			m := newModel.(Model)

			if m.quitting != tt.wantQuit {
				t.Errorf("quitting = %v, want %v", m.quitting, tt.wantQuit)
			}

			if tt.wantQuit && cmd == nil {
				t.Error("expected tea.Quit cmd")
			}
		})
	}
}

func TestModel_Update_ToggleDetailView(t *testing.T) {
	model := New(Config{TargetSessions: 10})

	if model.detailView {
		t.Error("detailView should be false initially")
	}

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")}
	newModel, _ := model.Update(msg)
	m := newModel.(Model)

	if !m.detailView {
		t.Error("detailView should be true after pressing 'd'")
	}

	newModel, _ = m.Update(msg)
	m = newModel.(Model)

	if m.detailView {
		t.Error("detailView should be false after pressing 'd' again")
	}
}

// =============================================================================
// Tests: Update - Window Size
// =============================================================================

func TestModel_Update_WindowSize(t *testing.T) {
	model := New(Config{TargetSessions: 10})

	msg := tea.WindowSizeMsg{Width: 120, Height: 40}
	newModel, _ := model.Update(msg)
	m := newModel.(Model)

	if m.width != 120 {
		t.Errorf("width = %d, want 120", m.width)
	}
	if m.height != 40 {
		t.Errorf("height = %d, want 40", m.height)
	}
}

// =============================================================================
// Tests: Update - Tick
// =============================================================================

func TestModel_Update_Tick(t *testing.T) {
	mockStats := &simstats.AggregatedStats{
		SessionsRun:        50,
		TotalDownloadedMB:  1000,
		AverageBitrateMbps: 3.5,
	}
	source := &mockStatsSource{stats: mockStats}

	model := New(Config{
		TargetSessions: 100,
		StatsSource:    source,
	})

	msg := TickMsg(time.Now())
	newModel, cmd := model.Update(msg)
	m := newModel.(Model)

	if m.stats == nil {
		t.Error("stats should be set after tick")
	}
	if m.stats.SessionsRun != 50 {
		t.Errorf("SessionsRun = %d, want 50", m.stats.SessionsRun)
	}
	if cmd == nil {
		t.Error("expected tick cmd to be returned")
	}
}

// =============================================================================
// Tests: Update - Stats Message
// =============================================================================

func TestModel_Update_StatsMsg(t *testing.T) {
	model := New(Config{TargetSessions: 100})

	mockStats := &simstats.AggregatedStats{
		SessionsRun:    75,
		SessionsFailed: 5,
	}

	msg := StatsMsg{Stats: mockStats}
	newModel, _ := model.Update(msg)
	m := newModel.(Model)

	if m.stats == nil {
		t.Error("stats should be set")
	}
	if m.stats.SessionsRun != 75 {
		t.Errorf("SessionsRun = %d, want 75", m.stats.SessionsRun)
	}
}

// =============================================================================
// Tests: Update - Quit Message
// =============================================================================

func TestModel_Update_QuitMsg(t *testing.T) {
	model := New(Config{TargetSessions: 10})

	msg := QuitMsg{}
	newModel, cmd := model.Update(msg)
	m := newModel.(Model)

	if !m.quitting {
		t.Error("quitting should be true")
	}
	if cmd == nil {
		t.Error("expected tea.Quit cmd")
	}
}

// =============================================================================
// Tests: View
// =============================================================================

func TestModel_View_Quitting(t *testing.T) {
	model := New(Config{TargetSessions: 10})
	model.quitting = true

	view := model.View()
	if view != "" {
		t.Errorf("View() when quitting should be empty, got %q", view)
	}
}

func TestModel_View_Summary(t *testing.T) {
	model := New(Config{
		TargetSessions: 100,
		ManifestPath:   "traces/manifest.json",
	})
	model.stats = &simstats.AggregatedStats{
		SessionsRun:        50,
		TotalRebufferingSeconds: 12,
		TotalDownloadedMB:  100000,
	}

	view := model.View()

	if len(view) == 0 {
		t.Error("View() returned empty string")
	}
}

// =============================================================================
// Tests: Accessors
// =============================================================================

func TestModel_Elapsed(t *testing.T) {
	model := New(Config{TargetSessions: 10})
	time.Sleep(10 * time.Millisecond)

	elapsed := model.Elapsed()
	if elapsed < 10*time.Millisecond {
		t.Errorf("Elapsed() = %v, want >= 10ms", elapsed)
	}
}

func TestModel_SessionsRun(t *testing.T) {
	model := New(Config{TargetSessions: 100})

	if model.SessionsRun() != 0 {
		t.Errorf("SessionsRun() without stats = %d, want 0", model.SessionsRun())
	}

	model.stats = &simstats.AggregatedStats{SessionsRun: 40, SessionsFailed: 10}
	if model.SessionsRun() != 50 {
		t.Errorf("SessionsRun() = %d, want 50", model.SessionsRun())
	}
}

func TestModel_Progress(t *testing.T) {
	tests := []struct {
		name           string
		targetSessions int
		sessionsRun    int
		sessionsFailed int
		want           float64
	}{
		{"zero target", 0, 0, 0, 0},
		{"zero run", 100, 0, 0, 0},
		{"half", 100, 50, 0, 0.5},
		{"full", 100, 90, 10, 1.0},
		{"over", 100, 150, 0, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(Config{TargetSessions: tt.targetSessions})
			if tt.sessionsRun > 0 || tt.sessionsFailed > 0 {
				model.stats = &simstats.AggregatedStats{
					SessionsRun:    tt.sessionsRun,
					SessionsFailed: tt.sessionsFailed,
				}
			}

			got := model.Progress()
			if got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModel_FailureRate(t *testing.T) {
	tests := []struct {
		name           string
		sessionsRun    int
		sessionsFailed int
		want           float64
	}{
		{"no data", 0, 0, 0},
		{"no failures", 100, 0, 0},
		{"some failures", 90, 10, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(Config{TargetSessions: 10})
			model.stats = &simstats.AggregatedStats{
				SessionsRun:    tt.sessionsRun,
				SessionsFailed: tt.sessionsFailed,
			}

			got := model.FailureRate()
			if got != tt.want {
				t.Errorf("FailureRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Tests: Formatting Helpers
// =============================================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour, "01:00:00"},
		{2*time.Hour + 30*time.Minute + 45*time.Second, "02:30:45"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{1000000, "1.0M"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatNumber(tt.n); got != tt.want {
				t.Errorf("formatNumber(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestFormatMB(t *testing.T) {
	tests := []struct {
		mb   float64
		want string
	}{
		{0, "0.00 MB"},
		{999, "999.00 MB"},
		{1000, "1.00 GB"},
		{2500, "2.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatMB(tt.mb); got != tt.want {
				t.Errorf("formatMB(%v) = %q, want %q", tt.mb, got, tt.want)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		s    float64
		want string
	}{
		{0, "0.00s"},
		{1.5, "1.50s"},
		{12.345, "12.35s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatSeconds(tt.s); got != tt.want {
				t.Errorf("formatSeconds(%v) = %q, want %q", tt.s, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0.0%"},
		{0.5, "50.0%"},
		{1.0, "100.0%"},
		{0.015, "1.5%"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatPercent(tt.value); got != tt.want {
				t.Errorf("formatPercent(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

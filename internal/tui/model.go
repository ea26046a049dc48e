package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/multiview-abr-sim/internal/simstats"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to refresh the display.
type TickMsg time.Time

// StatsMsg carries an updated aggregate snapshot.
type StatsMsg struct {
	Stats *simstats.AggregatedStats
}

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// Model represents the TUI state for a batch simulation run.
type Model struct {
	// Configuration
	targetSessions int
	manifestPath   string
	metricsAddr    string
	ladderTopMbps  float64

	// Current state
	stats      *simstats.AggregatedStats
	startTime  time.Time
	lastUpdate time.Time
	detailView bool

	// Display options
	width  int
	height int

	// Stats source (for fetching updates)
	statsSource StatsSource

	// Quit flag
	quitting bool
}

// StatsSource provides an aggregated snapshot of the batch run so far.
type StatsSource interface {
	GetAggregatedStats() *simstats.AggregatedStats
}

// Config holds TUI configuration.
type Config struct {
	TargetSessions int
	ManifestPath   string
	MetricsAddr    string
	LadderTopMbps  float64
	StatsSource    StatsSource
}

// New creates a new TUI model.
func New(cfg Config) Model {
	return Model{
		targetSessions: cfg.TargetSessions,
		manifestPath:   cfg.ManifestPath,
		metricsAddr:    cfg.MetricsAddr,
		ladderTopMbps:  cfg.LadderTopMbps,
		statsSource:    cfg.StatsSource,
		startTime:      time.Now(),
		lastUpdate:     time.Now(),
		width:          80,
		height:         24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	// tea.WithAltScreen() is passed when creating the program, so we
	// don't need tea.EnterAltScreen here.
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "d":
			m.detailView = !m.detailView
			return m, nil
		case "r":
			return m, tickCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.statsSource != nil {
			m.stats = m.statsSource.GetAggregatedStats()
		}
		m.lastUpdate = time.Now()
		return m, tickCmd()

	case StatsMsg:
		m.stats = msg.Stats
		m.lastUpdate = time.Now()
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.detailView && m.stats != nil && len(m.stats.PerSessionSummaries) > 0 {
		return m.renderDetailedView()
	}
	return m.renderSummaryView()
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the batch run started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// SessionsRun returns the number of sessions completed or failed so far.
func (m Model) SessionsRun() int {
	if m.stats == nil {
		return 0
	}
	return m.stats.SessionsRun + m.stats.SessionsFailed
}

// TargetSessions returns the total number of sessions the batch will run.
func (m Model) TargetSessions() int {
	return m.targetSessions
}

// Progress returns the batch completion fraction: 0.0 at the start and
// 1.0 once TargetSessions have finished. It is not clamped, so it exceeds
// 1.0 if more sessions than the target are reported.
func (m Model) Progress() float64 {
	if m.targetSessions == 0 {
		return 0
	}
	return float64(m.SessionsRun()) / float64(m.targetSessions)
}

// FailureRate returns the fraction of completed sessions that failed.
func (m Model) FailureRate() float64 {
	run := m.SessionsRun()
	if run == 0 {
		return 0
	}
	return float64(m.stats.SessionsFailed) / float64(run)
}

// RebufferRatio returns the fraction of elapsed wall-clock time the batch's
// sessions have spent rebuffering, aggregated across all completed sessions.
func (m Model) RebufferRatio() float64 {
	if m.stats == nil || m.stats.SessionsRun == 0 {
		return 0
	}
	elapsed := m.Elapsed().Seconds() * float64(m.stats.SessionsRun)
	if elapsed == 0 {
		return 0
	}
	return m.stats.TotalRebufferingSeconds / elapsed
}

// =============================================================================
// Helper for external use
// =============================================================================

// SendStats sends a stats update to the TUI.
func SendStats(p *tea.Program, stats *simstats.AggregatedStats) {
	if p != nil {
		p.Send(StatsMsg{Stats: stats})
	}
}

// SendQuit sends a quit message to the TUI.
func SendQuit(p *tea.Program) {
	if p != nil {
		p.Send(QuitMsg{})
	}
}

// =============================================================================
// Formatting Helpers (used by view.go)
// =============================================================================

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatNumber formats a number with K/M suffixes.
func formatNumber(n int64) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

// formatMB formats a megabyte quantity with GB rollover.
func formatMB(mb float64) string {
	if mb >= 1000 {
		return fmt.Sprintf("%.2f GB", mb/1000)
	}
	return fmt.Sprintf("%.2f MB", mb)
}

// formatSeconds formats a seconds value with two decimal places.
func formatSeconds(s float64) string {
	return fmt.Sprintf("%.2fs", s)
}

// formatPercent formats a fraction as a percentage.
func formatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value*100)
}

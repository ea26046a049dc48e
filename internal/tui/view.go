package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Main View Rendering
// =============================================================================

// renderSummaryView renders the main summary dashboard.
func (m Model) renderSummaryView() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderProgress())

	if m.stats != nil {
		sections = append(sections, m.renderRebufferStats())
		sections = append(sections, m.renderBitrateStats())
		sections = append(sections, m.renderDataStats())

		if m.hasFailures() {
			sections = append(sections, m.renderFailedSessions())
		}
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDetailedView renders per-session details.
func (m Model) renderDetailedView() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderSessionTable())
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	rebufferLabel := GetRebufferLabel(m.RebufferRatio())

	header := fmt.Sprintf(
		" multiview-abr-sim │ %s │ Sessions: %d/%d │ Elapsed: %s ",
		rebufferLabel,
		m.SessionsRun(),
		m.targetSessions,
		formatDuration(m.Elapsed()),
	)

	return headerStyle.Width(m.width).Render(header)
}

// =============================================================================
// Progress Section
// =============================================================================

func (m Model) renderProgress() string {
	progress := m.Progress()

	barWidth := m.width - 30
	if barWidth < 20 {
		barWidth = 20
	}
	progressBar := RenderProgressBar(progress, barWidth)

	var status string
	if progress >= 1.0 {
		status = statusOK.Render("✓ Batch complete")
	} else {
		status = statusInfo.Render(fmt.Sprintf("Running... %d/%d sessions", m.SessionsRun(), m.targetSessions))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("Batch Progress"),
		progressBar,
		status,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Rebuffering Statistics
// =============================================================================

func (m Model) renderRebufferStats() string {
	if m.stats == nil {
		return ""
	}
	s := m.stats

	rows := []string{
		renderStatRow("P50", formatSeconds(s.RebufferingP50)),
		renderStatRow("P95", formatSeconds(s.RebufferingP95)),
		renderStatRow("P99", formatSeconds(s.RebufferingP99)),
		renderStatRow("Peak (worst session)", formatSeconds(s.PeakRebufferingSeconds)),
		renderStatRow("Total across sessions", formatSeconds(s.TotalRebufferingSeconds)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{sectionHeaderStyle.Render("Rebuffering")}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

func renderStatRow(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		labelWideStyle.Render(label+":"),
		valueStyle.Render(value),
	)
}

// =============================================================================
// Delivered Quality Statistics
// =============================================================================

func (m Model) renderBitrateStats() string {
	if m.stats == nil {
		return ""
	}
	s := m.stats

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Left,
			labelWideStyle.Render("Average:"),
			GetBitrateLabel(s.AverageBitrateMbps, m.ladderTopMbps),
		),
		lipgloss.JoinHorizontal(lipgloss.Left,
			labelWideStyle.Render("P50:"),
			GetBitrateLabel(s.BitrateP50, m.ladderTopMbps),
		),
		lipgloss.JoinHorizontal(lipgloss.Left,
			labelWideStyle.Render("P95:"),
			GetBitrateLabel(s.BitrateP95, m.ladderTopMbps),
		),
		lipgloss.JoinHorizontal(lipgloss.Left,
			labelWideStyle.Render("P99:"),
			GetBitrateLabel(s.BitrateP99, m.ladderTopMbps),
		),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{sectionHeaderStyle.Render("Delivered Quality")}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Data Transfer Statistics
// =============================================================================

func (m Model) renderDataStats() string {
	if m.stats == nil {
		return ""
	}
	s := m.stats

	rows := []string{
		renderStatRow("Downloaded", formatMB(s.TotalDownloadedMB)),
		renderStatRow("Wasted (replaced)", formatMB(s.TotalWastedMB)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{sectionHeaderStyle.Render("Data Transferred")}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Failed Sessions
// =============================================================================

func (m Model) hasFailures() bool {
	return m.stats != nil && m.stats.SessionsFailed > 0
}

func (m Model) renderFailedSessions() string {
	if m.stats == nil {
		return ""
	}

	failureRateStyle := GetFailureRateStyle(m.FailureRate())

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Left,
			labelStyle.Render("Failed:"),
			failureRateStyle.Render(fmt.Sprintf("%d", m.stats.SessionsFailed)),
		),
		lipgloss.JoinHorizontal(lipgloss.Left,
			labelStyle.Render("Failure Rate:"),
			failureRateStyle.Render(formatPercent(m.FailureRate())),
		),
	}

	var failedIndices []string
	for _, summary := range m.stats.PerSessionSummaries {
		if summary.Failed {
			failedIndices = append(failedIndices, fmt.Sprintf("%d", summary.SessionIndex))
		}
	}
	if len(failedIndices) > 0 {
		rows = append(rows, dimStyle.Render("Indices: "+strings.Join(failedIndices, ", ")))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{sectionHeaderStyle.Render("Failed Sessions")}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Session Table (Detailed View)
// =============================================================================

func (m Model) renderSessionTable() string {
	if m.stats == nil || len(m.stats.PerSessionSummaries) == 0 {
		return boxStyle.Width(m.width - 2).Render(
			dimStyle.Render("No per-session data available. Press 'd' to toggle."),
		)
	}

	header := tableHeaderStyle.Render(
		fmt.Sprintf("%-8s %-8s %-12s %-12s %-12s",
			"Session", "Failed", "Rebuffer", "Bitrate", "Downloaded"),
	)

	maxRows := m.height - 10
	if maxRows < 5 {
		maxRows = 5
	}

	var rows []string
	for i, session := range m.stats.PerSessionSummaries {
		if i >= maxRows {
			rows = append(rows, dimStyle.Render(fmt.Sprintf("... and %d more sessions", len(m.stats.PerSessionSummaries)-maxRows)))
			break
		}

		rowStyle := tableRowEvenStyle
		if i%2 == 1 {
			rowStyle = tableRowOddStyle
		}

		failedStr := "no"
		if session.Failed {
			failedStr = "yes"
		}

		row := fmt.Sprintf("%-8d %-8s %-12s %-12s %-12s",
			session.SessionIndex,
			failedStr,
			formatSeconds(session.RebufferingSeconds),
			fmt.Sprintf("%.2f Mbps", session.AverageBitrateMbps),
			formatMB(session.DownloadedMB),
		)
		rows = append(rows, rowStyle.Render(row))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{
			sectionHeaderStyle.Render("Per-Session Results"),
			header,
		}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	shortcuts := []string{
		"q: quit",
		"d: toggle details",
		"r: refresh",
	}

	path := m.manifestPath
	maxPathLen := m.width - 60
	if len(path) > maxPathLen && maxPathLen > 10 {
		path = path[:maxPathLen-3] + "..."
	}

	left := dimStyle.Render(strings.Join(shortcuts, " │ "))
	right := dimStyle.Render("Manifest: " + path)

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return footerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Left,
			left,
			strings.Repeat(" ", padding),
			right,
		),
	)
}

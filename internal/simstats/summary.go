// Package simstats — this file implements the exit summary formatter,
// which renders batch-wide statistics at the end of a run. Grounded on
// the teacher's internal/stats.FormatExitSummary layout and formatting
// helpers.
package simstats

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SummaryConfig holds configuration for summary formatting.
type SummaryConfig struct {
	// TargetSessions is the number of sessions the manifest described.
	TargetSessions int

	// Duration is the total batch wall-clock duration.
	Duration time.Duration

	// MetricsAddr is the Prometheus metrics endpoint address.
	MetricsAddr string

	// Controller, ThroughputPredictor, and ViewPredictor name the
	// algorithms the batch ran with.
	Controller          string
	ThroughputPredictor string
	ViewPredictor       string
}

// FormatExitSummary formats aggregated stats for display at program exit.
func FormatExitSummary(stats *AggregatedStats, cfg SummaryConfig) string {
	if stats == nil {
		return formatBasicSummary(cfg)
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")
	b.WriteString("                         multiview-abr-sim Exit Summary\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n\n")

	fmt.Fprintf(&b, "Run Duration:           %s\n", FormatDuration(cfg.Duration))
	fmt.Fprintf(&b, "Target Sessions:        %d\n", cfg.TargetSessions)
	fmt.Fprintf(&b, "Sessions Completed:     %d\n", stats.SessionsRun)
	if stats.SessionsFailed > 0 {
		fmt.Fprintf(&b, "Sessions Failed:        %d\n", stats.SessionsFailed)
	}
	fmt.Fprintf(&b, "Controller:             %s\n", cfg.Controller)
	fmt.Fprintf(&b, "Throughput Predictor:   %s\n", cfg.ThroughputPredictor)
	fmt.Fprintf(&b, "View Predictor:         %s\n\n", cfg.ViewPredictor)

	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
	b.WriteString("                               Rebuffering\n")
	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")
	fmt.Fprintf(&b, "  Total:                %.2fs\n", stats.TotalRebufferingSeconds)
	fmt.Fprintf(&b, "  P50 (median):         %.2fs\n", stats.RebufferingP50)
	fmt.Fprintf(&b, "  P95:                  %.2fs\n", stats.RebufferingP95)
	fmt.Fprintf(&b, "  P99:                  %.2fs\n", stats.RebufferingP99)
	fmt.Fprintf(&b, "  Worst session:        %.2fs\n\n", stats.PeakRebufferingSeconds)

	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
	b.WriteString("                            Delivered Quality\n")
	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")
	fmt.Fprintf(&b, "  Average bitrate:      %.2f Mbps\n", stats.AverageBitrateMbps)
	fmt.Fprintf(&b, "  P50 (median):         %.2f Mbps\n", stats.BitrateP50)
	fmt.Fprintf(&b, "  P95:                  %.2f Mbps\n", stats.BitrateP95)
	fmt.Fprintf(&b, "  P99:                  %.2f Mbps\n\n", stats.BitrateP99)

	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
	b.WriteString("                             Data Transferred\n")
	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")
	fmt.Fprintf(&b, "  Downloaded:           %s\n", FormatMB(stats.TotalDownloadedMB))
	if stats.TotalWastedMB > 0 {
		fmt.Fprintf(&b, "  Wasted (replaced):    %s\n", FormatMB(stats.TotalWastedMB))
	}
	b.WriteString("\n")

	if stats.SessionsFailed > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                              Failed Sessions\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

		failedIndices := make([]int, 0, stats.SessionsFailed)
		for _, s := range stats.PerSessionSummaries {
			if s.Failed {
				failedIndices = append(failedIndices, s.SessionIndex)
			}
		}
		sort.Ints(failedIndices)
		for _, idx := range failedIndices {
			fmt.Fprintf(&b, "  session %d\n", idx)
		}
		b.WriteString("\n")
	}

	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "Metrics endpoint was: http://%s/metrics\n", cfg.MetricsAddr)
	}

	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

// formatBasicSummary formats a basic summary when no sessions completed.
func formatBasicSummary(cfg SummaryConfig) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")
	b.WriteString("                         multiview-abr-sim Exit Summary\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n\n")

	fmt.Fprintf(&b, "Run Duration:           %s\n", FormatDuration(cfg.Duration))
	fmt.Fprintf(&b, "Target Sessions:        %d\n\n", cfg.TargetSessions)

	b.WriteString("(No sessions completed)\n\n")

	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "Metrics endpoint was: http://%s/metrics\n", cfg.MetricsAddr)
	}

	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

// =============================================================================
// Formatting Helper Functions (exported for reuse)
// =============================================================================

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatNumber formats a number with K/M suffixes for readability.
func FormatNumber(n int64) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

// FormatMB formats a megabyte quantity with GB rollover.
func FormatMB(mb float64) string {
	if mb >= 1_000 {
		return fmt.Sprintf("%.2f GB", mb/1_000)
	}
	return fmt.Sprintf("%.2f MB", mb)
}

// FormatRate formats a rate with appropriate precision.
func FormatRate(rate float64) string {
	if rate >= 1000 {
		return fmt.Sprintf("%.1fK/s", rate/1000)
	}
	if rate >= 1 {
		return fmt.Sprintf("%.1f/s", rate)
	}
	return fmt.Sprintf("%.2f/s", rate)
}

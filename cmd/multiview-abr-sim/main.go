// Package main provides the multiview-abr-sim CLI entry point.
//
// multiview-abr-sim is a batch simulator that replays recorded network
// and view-attention traces through a pluggable ABR controller, without
// ever touching a real network or video decoder.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/multiview-abr-sim/internal/batch"
	"github.com/randomizedcoder/multiview-abr-sim/internal/config"
	"github.com/randomizedcoder/multiview-abr-sim/internal/controller"
	"github.com/randomizedcoder/multiview-abr-sim/internal/logging"
	"github.com/randomizedcoder/multiview-abr-sim/internal/manifest"
	"github.com/randomizedcoder/multiview-abr-sim/internal/metrics"
	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
	"github.com/randomizedcoder/multiview-abr-sim/internal/simstats"
	"github.com/randomizedcoder/multiview-abr-sim/internal/throughput"
	"github.com/randomizedcoder/multiview-abr-sim/internal/tui"
	"github.com/randomizedcoder/multiview-abr-sim/internal/view"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/multiview-abr-sim
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("multiview-abr-sim %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	streamingCfg := multiviewabr.StreamingConfig{
		SegmentSeconds:   cfg.SegmentSeconds,
		BitratesMbps:     cfg.BitratesMbps,
		StreamCount:      cfg.StreamCount,
		RebufferSafety:   cfg.RebufferSafety,
		MaxBufferSeconds: cfg.MaxBufferSeconds,
	}
	if err := streamingCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	doc, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		return 1
	}
	if err := doc.Validate(streamingCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Manifest error: %v\n", err)
		return 1
	}

	if cfg.Check {
		logger.Info("check_mode_enabled", "sessions", doc.SessionCount(), "manifest", cfg.ManifestPath)
		fmt.Printf("Manifest OK: %d session(s)\n", doc.SessionCount())
		return 0
	}

	logger.Info("starting",
		"version", version,
		"sessions", doc.SessionCount(),
		"controller", cfg.Controller,
		"throughput_predictor", cfg.ThroughputPredictor,
		"view_predictor", cfg.ViewPredictor,
		"manifest", cfg.ManifestPath,
		"metrics_addr", cfg.MetricsAddr,
	)

	if !cfg.TUIEnabled {
		printBanner(cfg, doc.SessionCount())
	}

	sessions, err := buildSessions(cfg, streamingCfg, doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building sessions: %v\n", err)
		return 1
	}

	aggregator := simstats.NewAggregator()

	var collector *metrics.Collector
	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector(metrics.CollectorConfig{
			TargetSessions:      doc.SessionCount(),
			Controller:          cfg.Controller,
			ThroughputPredictor: cfg.ThroughputPredictor,
			ViewPredictor:       cfg.ViewPredictor,
			PerSessionMetrics:   cfg.CaptureViewDistributions,
		})
		metricsServer = metrics.NewServer(cfg.MetricsAddr, logger)
		if err := metricsServer.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting metrics server: %v\n", err)
			return 1
		}
	}

	var program *tea.Program
	if cfg.TUIEnabled {
		model := tui.New(tui.Config{
			TargetSessions: doc.SessionCount(),
			ManifestPath:   cfg.ManifestPath,
			MetricsAddr:    cfg.MetricsAddr,
			LadderTopMbps:  topRung(cfg.BitratesMbps),
			StatsSource:    aggregatorStatsSource{aggregator},
		})
		program = tea.NewProgram(model)
	}

	ctx := context.Background()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_, sessionErrors := batch.Run(ctx, sessions, batch.Options{
			Workers: cfg.Workers,
			OnSessionDone: func(index int, result *multiviewabr.SessionResult, sessionErr error) {
				stats := simstats.NewSessionStats(index)
				if sessionErr != nil {
					stats.RecordError(sessionErr)
					logger.Warn("session_failed", "index", index, "error", sessionErr)
				} else {
					stats.Record(streamingCfg, result)
					if collector != nil {
						collector.RecordSessionResult(result.RebufferingSeconds, averageBitrateMbps(result))
					}
				}
				aggregator.RecordSession(stats)

				if collector != nil {
					collector.RecordStats(toCollectorUpdate(aggregator.Aggregate()))
				}
			},
		})
		for _, se := range sessionErrors {
			logger.Warn("session_error", "index", se.Index, "error", se.Err)
		}
		tui.SendQuit(program)
	}()

	if program != nil {
		if _, err := program.Run(); err != nil {
			logger.Error("tui_failed", "error", err)
		}
	}
	<-runDone

	if metricsServer != nil {
		_ = metricsServer.Shutdown(ctx)
	}

	stats := aggregator.Aggregate()
	fmt.Print(simstats.FormatExitSummary(stats, simstats.SummaryConfig{
		TargetSessions:      doc.SessionCount(),
		Duration:            aggregator.Elapsed(),
		MetricsAddr:         cfg.MetricsAddr,
		Controller:          cfg.Controller,
		ThroughputPredictor: cfg.ThroughputPredictor,
		ViewPredictor:       cfg.ViewPredictor,
	}))

	if stats.SessionsFailed > 0 {
		return 1
	}
	return 0
}

// buildSessions turns a manifest document into the batch.Session slice
// Run expects, wiring in the predictor/controller factories the config
// selects.
func buildSessions(cfg *config.Config, streamingCfg multiviewabr.StreamingConfig, doc *manifest.Document) ([]batch.Session, error) {
	sessions := make([]batch.Session, doc.SessionCount())
	for i := range sessions {
		duration := cfg.DurationSeconds
		if duration <= 0 {
			duration = doc.DurationSeconds
		}
		if duration <= 0 {
			duration = float64(len(doc.NetworkData[i].ThroughputMbps)) * doc.NetworkData[i].TickSeconds
		}

		sessions[i] = batch.Session{
			Config:                   streamingCfg,
			Network:                  doc.NetworkData[i],
			PrimaryView:              doc.PrimaryStreamData[i],
			DurationSeconds:          duration,
			NewController:            newControllerFactory(cfg),
			NewThroughput:            newThroughputFactory(cfg),
			NewView:                  newViewFactory(cfg, streamingCfg, doc.PrimaryStreamData[i].TickSeconds),
			CaptureViewDistributions: cfg.CaptureViewDistributions,
		}
	}
	return sessions, nil
}

func newControllerFactory(cfg *config.Config) func() controller.ABRController {
	switch cfg.Controller {
	case "mpc":
		return func() controller.ABRController {
			return controller.NewModelPredictiveController(controller.ModelPredictiveControllerOptions{
				AllowUpgrades:    cfg.AllowUpgrades,
				HorizonGroups:    cfg.HorizonGroups,
				BufferCostWeight: cfg.BufferCostWeight,
				MaxWaitGroups:    cfg.MaxWaitGroups,
			})
		}
	default:
		return func() controller.ABRController {
			return controller.NewThroughputBasedController(controller.ThroughputBasedControllerOptions{})
		}
	}
}

func newThroughputFactory(cfg *config.Config) func() throughput.Predictor {
	switch cfg.ThroughputPredictor {
	case "ema":
		return func() throughput.Predictor {
			return throughput.NewEMAPredictor(cfg.EMAHalfLifeFastSeconds, cfg.EMAHalfLifeSlowSeconds)
		}
	default:
		return func() throughput.Predictor {
			return throughput.NewMovingAveragePredictor(cfg.MovingAverageWindowSeconds)
		}
	}
}

func newViewFactory(cfg *config.Config, streamingCfg multiviewabr.StreamingConfig, viewTickSeconds float64) func() view.Predictor {
	switch cfg.ViewPredictor {
	case "markov":
		return func() view.Predictor {
			return view.NewMarkovPredictor(streamingCfg.StreamCount, viewTickSeconds, streamingCfg.SegmentSeconds, view.MarkovPredictorOptions{
				WindowSeconds: cfg.MarkovWindowSeconds,
				Smoothing:     cfg.MarkovSmoothing,
			})
		}
	default:
		return func() view.Predictor {
			return view.NewStaticPredictor(streamingCfg.StreamCount, 0)
		}
	}
}

// averageBitrateMbps mirrors simstats' own averaging so the Tier 1
// histogram observation matches what the aggregator will later compute.
func averageBitrateMbps(result *multiviewabr.SessionResult) float64 {
	grid := result.BufferedBitratesMbps
	if grid.Rows == 0 || grid.Cols == 0 || len(grid.Data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range grid.Data {
		sum += v
	}
	return sum / float64(len(grid.Data))
}

func topRung(bitratesMbps []float64) float64 {
	if len(bitratesMbps) == 0 {
		return 0
	}
	return bitratesMbps[len(bitratesMbps)-1]
}

// aggregatorStatsSource adapts *simstats.Aggregator to tui.StatsSource.
type aggregatorStatsSource struct {
	aggregator *simstats.Aggregator
}

func (a aggregatorStatsSource) GetAggregatedStats() *simstats.AggregatedStats {
	return a.aggregator.Aggregate()
}

// toCollectorUpdate adapts an aggregated-stats snapshot to the subset
// metrics.Collector understands (a separate type to avoid a circular
// import between internal/simstats and internal/metrics).
func toCollectorUpdate(stats *simstats.AggregatedStats) *metrics.AggregatedStatsUpdate {
	update := &metrics.AggregatedStatsUpdate{
		ActiveSessions:         0,
		SessionsCompleted:      int64(stats.SessionsRun),
		SessionsFailed:         int64(stats.SessionsFailed),
		RebufferingP50Seconds:  stats.RebufferingP50,
		RebufferingP95Seconds:  stats.RebufferingP95,
		RebufferingP99Seconds:  stats.RebufferingP99,
		RebufferingPeakSeconds: stats.PeakRebufferingSeconds,
		BitrateP50Mbps:         stats.BitrateP50,
		BitrateP95Mbps:         stats.BitrateP95,
		BitrateP99Mbps:         stats.BitrateP99,
		DownloadedMB:           stats.TotalDownloadedMB,
		WastedMB:               stats.TotalWastedMB,
	}
	for _, s := range stats.PerSessionSummaries {
		update.PerSessionStats = append(update.PerSessionStats, metrics.PerSessionStatsUpdate{
			SessionIndex:       s.SessionIndex,
			RebufferingSeconds: s.RebufferingSeconds,
			AverageBitrateMbps: s.AverageBitrateMbps,
		})
	}
	return update
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config, sessionCount int) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                       multiview-abr-sim                           ║")
	fmt.Println("║         Multiview Adaptive Bitrate Streaming Simulator             ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Manifest:    %s (%d sessions)\n", cfg.ManifestPath, sessionCount)
	fmt.Printf("  Controller:  %s\n", cfg.Controller)
	fmt.Printf("  Throughput:  %s\n", cfg.ThroughputPredictor)
	fmt.Printf("  View:        %s\n", cfg.ViewPredictor)
	if cfg.MetricsAddr != "" {
		fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()
}

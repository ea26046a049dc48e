package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// float64List is a custom flag type for a comma-separated bitrate ladder.
type float64List []float64

func (f *float64List) String() string {
	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (f *float64List) Set(value string) error {
	var out []float64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return fmt.Errorf("invalid bitrate %q: %w", part, err)
		}
		out = append(out, v)
	}
	*f = out
	return nil
}

// ParseFlags parses command-line flags and returns a Config.
// Returns an error if required arguments are missing or invalid.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()
	bitrates := float64List(cfg.BitratesMbps)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `multiview-abr-sim - multiview adaptive bitrate streaming simulator

Usage:
  multiview-abr-sim [flags] <manifest.json>

Streaming Defaults:
`)
		printFlagCategory([]string{"stream-count", "segment-seconds", "max-buffer-seconds", "rebuffer-safety", "bitrates", "duration"})

		fmt.Fprintf(os.Stderr, "\nAlgorithm Selection:\n")
		printFlagCategory([]string{"controller", "throughput-predictor", "view-predictor"})

		fmt.Fprintf(os.Stderr, "\nController Tuning:\n")
		printFlagCategory([]string{"allow-upgrades", "horizon-groups", "buffer-cost-weight", "max-wait-groups"})

		fmt.Fprintf(os.Stderr, "\nPredictor Tuning:\n")
		printFlagCategory([]string{"ma-window", "ema-half-life-fast", "ema-half-life-slow", "markov-window", "markov-smoothing"})

		fmt.Fprintf(os.Stderr, "\nBatch Execution:\n")
		printFlagCategory([]string{"workers", "capture-view-distributions", "output", "output-format"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "tui"})

		fmt.Fprintf(os.Stderr, "\nDiagnostics:\n")
		printFlagCategory([]string{"check"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Run a batch of sessions described by a manifest
  multiview-abr-sim -controller mpc sessions.json

  # Validate a manifest without running it
  multiview-abr-sim -check sessions.json

`)
	}

	flag.IntVar(&cfg.StreamCount, "stream-count", cfg.StreamCount, "Default number of streams per session")
	flag.Float64Var(&cfg.SegmentSeconds, "segment-seconds", cfg.SegmentSeconds, "Default segment duration in seconds")
	flag.Float64Var(&cfg.MaxBufferSeconds, "max-buffer-seconds", cfg.MaxBufferSeconds, "Default playback buffer cap in seconds")
	flag.Float64Var(&cfg.RebufferSafety, "rebuffer-safety", cfg.RebufferSafety, "Fraction of predicted throughput a controller may commit to")
	flag.Var(&bitrates, "bitrates", "Default comma-separated bitrate ladder in Mbps")
	flag.Float64Var(&cfg.DurationSeconds, "duration", cfg.DurationSeconds, "Default session duration in seconds (0 = manifest duration, else full trace)")

	flag.StringVar(&cfg.Controller, "controller", cfg.Controller, `ABR controller: "throughput" or "mpc"`)
	flag.StringVar(&cfg.ThroughputPredictor, "throughput-predictor", cfg.ThroughputPredictor, `Throughput predictor: "moving-average" or "ema"`)
	flag.StringVar(&cfg.ViewPredictor, "view-predictor", cfg.ViewPredictor, `View predictor: "static" or "markov"`)

	flag.BoolVar(&cfg.AllowUpgrades, "allow-upgrades", cfg.AllowUpgrades, "Allow the MPC controller to request upgrades")
	flag.IntVar(&cfg.HorizonGroups, "horizon-groups", cfg.HorizonGroups, "MPC lookahead horizon in segment groups")
	flag.Float64Var(&cfg.BufferCostWeight, "buffer-cost-weight", cfg.BufferCostWeight, "MPC rebuffer/overflow risk weight")
	flag.IntVar(&cfg.MaxWaitGroups, "max-wait-groups", cfg.MaxWaitGroups, "MPC maximum groups a candidate may defer")

	flag.Float64Var(&cfg.MovingAverageWindowSeconds, "ma-window", cfg.MovingAverageWindowSeconds, "Moving-average predictor trailing window in seconds")
	flag.Float64Var(&cfg.EMAHalfLifeFastSeconds, "ema-half-life-fast", cfg.EMAHalfLifeFastSeconds, "EMA predictor fast half-life in seconds")
	flag.Float64Var(&cfg.EMAHalfLifeSlowSeconds, "ema-half-life-slow", cfg.EMAHalfLifeSlowSeconds, "EMA predictor slow half-life in seconds")
	flag.Float64Var(&cfg.MarkovWindowSeconds, "markov-window", cfg.MarkovWindowSeconds, "Markov view predictor trailing window in seconds")
	flag.Float64Var(&cfg.MarkovSmoothing, "markov-smoothing", cfg.MarkovSmoothing, "Markov view predictor Laplace smoothing constant")

	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent session workers (0 = NumCPU)")
	flag.BoolVar(&cfg.CaptureViewDistributions, "capture-view-distributions", cfg.CaptureViewDistributions, "Record predicted view distributions per session")
	flag.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Results destination (not read: the exit summary is printed to stdout)")
	flag.StringVar(&cfg.OutputFormat, "output-format", cfg.OutputFormat, `Results format: "json" or "text" (validated, not read)`)

	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Enable live terminal dashboard")

	flag.BoolVar(&cfg.Check, "check", cfg.Check, "Validate the manifest and exit without running it")

	flag.Parse()

	cfg.BitratesMbps = []float64(bitrates)

	args := flag.Args()
	if len(args) >= 1 {
		cfg.ManifestPath = args[0]
	}

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(names []string) {
	flag.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}
	if _, err := strconv.ParseFloat(f.DefValue, 64); err == nil {
		return "float"
	}
	return "string"
}

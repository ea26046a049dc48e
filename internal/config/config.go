// Package config provides configuration management for multiview-abr-sim.
package config

import "time"

// Config holds all configuration options for a batch simulation run.
type Config struct {
	// Input / Output
	ManifestPath string `json:"manifest_path"` // JSON file describing the batch's sessions
	OutputPath   string `json:"output_path"`   // not read by the CLI; the exit summary always goes to stdout
	OutputFormat string `json:"output_format"` // "json" or "text"; validated, not read by the CLI

	// Streaming config shared by every session in the batch (the manifest
	// carries only traces and a duration).
	StreamCount      int       `json:"stream_count"`
	SegmentSeconds   float64   `json:"segment_seconds"`
	MaxBufferSeconds float64   `json:"max_buffer_seconds"`
	RebufferSafety   float64   `json:"rebuffer_safety"`
	BitratesMbps     []float64 `json:"bitrates_mbps"`
	DurationSeconds  float64   `json:"duration_seconds"` // 0 = manifest duration_seconds, else each session's full trace

	// Algorithm selection
	Controller          string `json:"controller"`           // "throughput" or "mpc"
	ThroughputPredictor string `json:"throughput_predictor"` // "moving-average" or "ema"
	ViewPredictor       string `json:"view_predictor"`       // "static" or "markov"

	// ModelPredictiveController tuning
	AllowUpgrades    bool    `json:"allow_upgrades"`
	HorizonGroups    int     `json:"horizon_groups"`
	BufferCostWeight float64 `json:"buffer_cost_weight"`
	MaxWaitGroups    int     `json:"max_wait_groups"`

	// Predictor tuning
	MovingAverageWindowSeconds float64 `json:"moving_average_window_seconds"`
	EMAHalfLifeFastSeconds     float64 `json:"ema_half_life_fast_seconds"`
	EMAHalfLifeSlowSeconds     float64 `json:"ema_half_life_slow_seconds"`
	MarkovWindowSeconds        float64 `json:"markov_window_seconds"`
	MarkovSmoothing            float64 `json:"markov_smoothing"`

	// Batch execution
	Workers                  int  `json:"workers"` // 0 = runtime.NumCPU()
	CaptureViewDistributions bool `json:"capture_view_distributions"`

	// Observability
	MetricsAddr string `json:"metrics_addr"`
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	TUIEnabled  bool   `json:"tui_enabled"`

	// Diagnostic modes
	Check bool `json:"check"` // validate the manifest and exit
}

// DefaultConfig returns a Config with sensible defaults, grounded on the
// original implementation's defaults documented in SPEC_FULL.md §4.
func DefaultConfig() *Config {
	return &Config{
		OutputFormat: "json",

		StreamCount:      4,
		SegmentSeconds:   2.0,
		MaxBufferSeconds: 30.0,
		RebufferSafety:   0.75,
		BitratesMbps:     []float64{1, 2, 4, 8},
		DurationSeconds:  0,

		Controller:          "throughput",
		ThroughputPredictor: "moving-average",
		ViewPredictor:       "static",

		AllowUpgrades:    true,
		HorizonGroups:    3,
		BufferCostWeight: 1.0,
		MaxWaitGroups:    1,

		MovingAverageWindowSeconds: 4.0,
		EMAHalfLifeFastSeconds:     3.0,
		EMAHalfLifeSlowSeconds:     8.0,
		MarkovWindowSeconds:        4.0,
		MarkovSmoothing:            1.0,

		Workers:                  0,
		CaptureViewDistributions: false,

		MetricsAddr: "0.0.0.0:17091",
		Verbose:     false,
		LogFormat:   "json",
		TUIEnabled:  false,

		Check: false,
	}
}

// pollInterval is not referenced anywhere; the TUI refreshes on its own
// 500ms tick (tickCmd in internal/tui).
const pollInterval = 250 * time.Millisecond

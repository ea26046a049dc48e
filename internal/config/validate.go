package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.ManifestPath == "" {
		errs = append(errs, ValidationError{
			Field:   "manifest_path",
			Message: "a session manifest path is required",
		})
	}

	if cfg.StreamCount < 1 {
		errs = append(errs, ValidationError{
			Field:   "stream_count",
			Message: "must be at least 1",
		})
	}

	if cfg.SegmentSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "segment_seconds",
			Message: "must be positive",
		})
	}

	if cfg.MaxBufferSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "max_buffer_seconds",
			Message: "must be positive",
		})
	}

	if cfg.RebufferSafety <= 0 || cfg.RebufferSafety > 1 {
		errs = append(errs, ValidationError{
			Field:   "rebuffer_safety",
			Message: "must be in (0, 1]",
		})
	}

	if len(cfg.BitratesMbps) == 0 {
		errs = append(errs, ValidationError{
			Field:   "bitrates_mbps",
			Message: "at least one bitrate rung is required",
		})
	} else {
		for i := 1; i < len(cfg.BitratesMbps); i++ {
			if cfg.BitratesMbps[i] <= cfg.BitratesMbps[i-1] {
				errs = append(errs, ValidationError{
					Field:   "bitrates_mbps",
					Message: "must be strictly increasing",
				})
				break
			}
		}
	}

	validControllers := map[string]bool{"throughput": true, "mpc": true}
	if !validControllers[cfg.Controller] {
		errs = append(errs, ValidationError{
			Field:   "controller",
			Message: fmt.Sprintf("must be one of: throughput, mpc (got %q)", cfg.Controller),
		})
	}

	validThroughputPredictors := map[string]bool{"moving-average": true, "ema": true}
	if !validThroughputPredictors[cfg.ThroughputPredictor] {
		errs = append(errs, ValidationError{
			Field:   "throughput_predictor",
			Message: fmt.Sprintf("must be one of: moving-average, ema (got %q)", cfg.ThroughputPredictor),
		})
	}

	validViewPredictors := map[string]bool{"static": true, "markov": true}
	if !validViewPredictors[cfg.ViewPredictor] {
		errs = append(errs, ValidationError{
			Field:   "view_predictor",
			Message: fmt.Sprintf("must be one of: static, markov (got %q)", cfg.ViewPredictor),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}
	if !validFormats[cfg.OutputFormat] {
		errs = append(errs, ValidationError{
			Field:   "output_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.OutputFormat),
		})
	}

	if cfg.HorizonGroups < 1 {
		errs = append(errs, ValidationError{
			Field:   "horizon_groups",
			Message: "must be at least 1",
		})
	}
	if cfg.MaxWaitGroups < 0 {
		errs = append(errs, ValidationError{
			Field:   "max_wait_groups",
			Message: "must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

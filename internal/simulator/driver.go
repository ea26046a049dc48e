// Package simulator drives a single streaming session: a loop over
// segment groups that asks the ABR controller for a decision, executes
// it against the network simulator, updates the throughput and view
// predictors, and accumulates the caller-facing SessionResult. Grounded
// on spec.md §4.5 and the end-to-end scenario in
// original_source/tests/MultiviewABRSimulatorTest.cpp.
package simulator

import (
	"math"

	"github.com/randomizedcoder/multiview-abr-sim/internal/controller"
	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
	"github.com/randomizedcoder/multiview-abr-sim/internal/network"
	"github.com/randomizedcoder/multiview-abr-sim/internal/throughput"
	"github.com/randomizedcoder/multiview-abr-sim/internal/view"
)

// Inputs bundles everything one session's Run call needs.
type Inputs struct {
	Config      multiviewabr.StreamingConfig
	Network     multiviewabr.NetworkSeries
	PrimaryView multiviewabr.PrimaryStreamSeries
	DurationSeconds float64

	Controller controller.ABRController
	Throughput throughput.Predictor
	View       view.Predictor

	// CaptureViewDistributions requests that SessionResult.PrimaryStreamDistributions
	// be populated (it is left with a nil Data grid otherwise, per
	// spec.md §9's "multidimensional buffers are caller-allocated").
	CaptureViewDistributions bool
}

// Run executes one streaming session and returns its result. Before the
// first group it validates the config and both series, returning a
// *multiviewabr.ConfigError, ShapeError or DataError if a check fails.
func Run(in Inputs) (*multiviewabr.SessionResult, error) {
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}
	if err := in.Network.Validate(); err != nil {
		return nil, err
	}
	if err := in.PrimaryView.Validate(in.Config.StreamCount); err != nil {
		return nil, err
	}

	groupCount := int(math.Round(in.DurationSeconds / in.Config.SegmentSeconds))
	if groupCount < 1 {
		groupCount = 1
	}

	net := network.New(in.Network)
	streamCount := in.Config.StreamCount

	buffered := multiviewabr.NewGrid2D(groupCount, streamCount)
	var distributions multiviewabr.Grid2D
	if in.CaptureViewDistributions {
		distributions = multiviewabr.NewGrid2D(groupCount, streamCount)
	}

	lastBitrateIDs := make([]int, streamCount)
	bufferSeconds := 0.0
	totalRebuffer := 0.0
	totalDownloadedMB := 0.0
	totalWastedMB := 0.0

	viewTickSeconds := in.PrimaryView.TickSeconds
	ticksPerGroup := int(in.Config.SegmentSeconds/viewTickSeconds + 0.5)
	if ticksPerGroup < 1 {
		ticksPerGroup = 1
	}
	viewTickIdx := 0

	for g := 0; g < groupCount; g++ {
		// Feed the view predictor every ground-truth tick that falls in
		// this group, before asking the controller to decide (the
		// controller only ever sees what has already been observed).
		for t := 0; t < ticksPerGroup && viewTickIdx < len(in.PrimaryView.ViewIDs); t++ {
			in.View.Update(in.PrimaryView.ViewIDs[viewTickIdx])
			viewTickIdx++
		}

		forecastGroups := 1
		distribution := in.View.PredictDistribution(forecastGroups)

		ctx := controller.Context{
			Config:                  in.Config,
			LastBitrateIDs:          lastBitrateIDs,
			BufferedSeconds:         bufferSeconds,
			PredictedThroughputMbps: in.Throughput.PredictMbps(),
			ViewDistribution:        distribution,
		}
		action := in.Controller.Decide(ctx)

		if action.WaitGroupCount > 0 {
			waitSeconds := float64(action.WaitGroupCount) * in.Config.SegmentSeconds
			net.WaitFor(waitSeconds)
			bufferSeconds -= waitSeconds
			if bufferSeconds < 0 {
				totalRebuffer += -bufferSeconds
				bufferSeconds = 0
			}
		}

		// If the group this download phase is about to commit would push
		// the buffer past capacity, first drain the excess by letting
		// simulated time pass without transferring anything (spec.md
		// §4.5 step 3). raw_wasted_mb is reserved for the upgrade case
		// (wait_group_count == buffer_size, replacing an already-buffered
		// group) — neither controller this simulator ships produces that
		// action today (see DESIGN.md Open-Question #5), so overflow here
		// is always handled by waiting, never by discarding bytes.
		if projected := bufferSeconds + in.Config.SegmentSeconds; projected > in.Config.MaxBufferSeconds {
			excessSeconds := projected - in.Config.MaxBufferSeconds
			net.WaitFor(excessSeconds)
			bufferSeconds -= excessSeconds
			if bufferSeconds < 0 {
				totalRebuffer += -bufferSeconds
				bufferSeconds = 0
			}
		}

		// The whole group becomes available to the buffer up front, once
		// — not once per stream — and only afterward does the wall-clock
		// time each stream's download actually took get charged against
		// it. Reversing this order (charging download time first) would
		// manufacture a rebuffer out of ordinary startup buffering and
		// does not match
		// original_source/tests/MultiviewABRSimulatorTest.cpp's pinned
		// zero-rebuffering scenario.
		bufferSeconds += in.Config.SegmentSeconds

		groupDownloadedMB := 0.0
		for s := 0; s < streamCount; s++ {
			rungID := action.BitrateIDs[s]
			if rungID < 0 || rungID >= len(in.Config.BitratesMbps) {
				rungID = 0
			}
			rateMbps := in.Config.BitratesMbps[rungID]
			sizeMB := rateMbps * in.Config.SegmentSeconds / 8.0

			result := net.Download(sizeMB)
			in.Throughput.Update(result.MB, result.Seconds)

			groupDownloadedMB += result.MB
			totalDownloadedMB += result.MB

			bufferSeconds -= result.Seconds
			if bufferSeconds < 0 {
				totalRebuffer += -bufferSeconds
				bufferSeconds = 0
			}

			buffered.Set(g, s, rateMbps)
			lastBitrateIDs[s] = rungID

			if in.CaptureViewDistributions && len(distribution) > 0 && s < len(distribution[0]) {
				distributions.Set(g, s, distribution[0][s])
			}
		}
		_ = groupDownloadedMB
	}

	return &multiviewabr.SessionResult{
		RebufferingSeconds:         totalRebuffer,
		BufferedBitratesMbps:       buffered,
		PrimaryStreamDistributions: distributions,
		DownloadedMB:               totalDownloadedMB,
		RawWastedMB:                totalWastedMB,
	}, nil
}

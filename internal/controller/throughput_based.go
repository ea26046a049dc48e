package controller

import "github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"

// ThroughputBasedControllerOptions configures a ThroughputBasedController.
// It has no tunables beyond the shared Context; the type exists so
// NewThroughputBasedController takes an options value the same way
// NewModelPredictiveController does.
type ThroughputBasedControllerOptions struct{}

// ThroughputBasedController is the simplest ABR policy: it always
// requests the highest bitrate rung affordable (under
// RebufferSafety) for the primary stream (index 0), and the lowest rung
// for every other stream — the secondary views are assumed
// off-center/small and not worth spending bandwidth on. Grounded on
// original_source/tests/MultiviewABRControllers/ThroughputBasedControllerTest.cpp,
// whose pinned scenarios (5/10/15 Mbps -> rung 1/2/3) this
// implementation reproduces exactly.
type ThroughputBasedController struct {
	_ ThroughputBasedControllerOptions
}

// NewThroughputBasedController constructs a ThroughputBasedController.
func NewThroughputBasedController(opts ThroughputBasedControllerOptions) *ThroughputBasedController {
	return &ThroughputBasedController{}
}

// Decide implements ABRController.
func (c *ThroughputBasedController) Decide(ctx Context) multiviewabr.ControlAction {
	streamCount := ctx.Config.StreamCount
	rung := highestAffordableRung(ctx.Config.BitratesMbps, ctx.PredictedThroughputMbps, ctx.Config.RebufferSafety)

	ids := make([]int, streamCount)
	if streamCount > 0 {
		ids[0] = rung
	}
	// Other streams stay at rung 0 (the lowest); the zero value already
	// satisfies that, so there's nothing to set.

	waitGroupCount := 0
	if ctx.BufferedSeconds >= ctx.Config.MaxBufferSeconds-ctx.Config.SegmentSeconds {
		waitGroupCount = 1
	}

	return multiviewabr.ControlAction{WaitGroupCount: waitGroupCount, BitrateIDs: ids}
}

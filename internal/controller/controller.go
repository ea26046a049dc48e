// Package controller implements the ABR (adaptive bitrate) decision
// policies: ThroughputBasedController (a simple reactive rule) and
// ModelPredictiveController (a score-maximizing policy that evaluates
// each candidate over the next group). Grounded on
// original_source/tests/MultiviewABRControllers/*.
package controller

import "github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"

// Context carries everything a controller needs to decide the next
// ControlAction: the streaming config, the bitrate id most recently
// buffered for each view, current buffer occupancy, the throughput
// forecast, and the view forecast for the upcoming groups.
type Context struct {
	Config              multiviewabr.StreamingConfig
	LastBitrateIDs       []int // per-stream, most recently buffered rung
	BufferedSeconds      float64
	PredictedThroughputMbps float64
	ViewDistribution     [][]float64 // [group][stream], only group 0 used by ModelPredictive; ThroughputBased ignores it
}

// ABRController decides how many groups to wait and which bitrate rung
// to request for each view, given the current Context.
type ABRController interface {
	Decide(ctx Context) multiviewabr.ControlAction
}

// highestAffordableRung returns the largest bitrate index whose rate
// does not exceed throughputMbps scaled down by rebufferSafety. Index
// 0 (the lowest rung) is always affordable.
func highestAffordableRung(bitratesMbps []float64, throughputMbps, rebufferSafety float64) int {
	best := 0
	for i, rate := range bitratesMbps {
		if rate <= throughputMbps*rebufferSafety {
			best = i
		}
	}
	return best
}

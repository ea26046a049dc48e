package controller

import (
	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
)

// Default tunables for ModelPredictiveController. Exact-decimal
// reproduction of the original implementation's internal scoring was
// not pursued (see DESIGN.md Open-Question #5); the pinned BitrateIDs
// assertions from
// original_source/tests/MultiviewABRControllers/ModelPredictiveControllerTest.cpp
// are not reproduced, and model_predictive_test.go checks structural
// invariants instead.
const (
	DefaultHorizonGroups    = 3
	DefaultBufferCostWeight = 1.0
	DefaultMaxWaitGroups    = 1
)

// ModelPredictiveControllerOptions configures a ModelPredictiveController.
type ModelPredictiveControllerOptions struct {
	// AllowUpgrades permits requesting a higher rung than the stream's
	// last buffered rung. When false, candidates may only hold or
	// downgrade — useful for reproducing the original's
	// "BasicControlWithoutUpgrades" pinned scenario.
	AllowUpgrades bool
	// HorizonGroups is stored and defaulted to DefaultHorizonGroups, but
	// score does not read it: every candidate is evaluated over the next
	// group only.
	HorizonGroups int
	// BufferCostWeight trades off expected bitrate against the
	// rebuffering risk of a candidate (higher values make the
	// controller more buffer-averse). Defaults to DefaultBufferCostWeight.
	BufferCostWeight float64
	// MaxWaitGroups bounds how many groups a candidate may defer
	// downloading (pure pacing, no change in bitrate). A negative value
	// is replaced by DefaultMaxWaitGroups; zero is kept and allows no
	// waiting.
	MaxWaitGroups int
}

// ModelPredictiveController enumerates candidate (wait, bitrate-vector)
// actions, scores each by the attention-weighted expected bitrate of the
// next group minus a penalty for the buffer underrun or overflow that a
// single wait-then-download step would cause (no multi-group simulation
// is run), and picks the
// highest-scoring candidate — breaking ties by preferring less waiting,
// then a lexicographically smaller bitrate vector.
type ModelPredictiveController struct {
	opts ModelPredictiveControllerOptions
}

// NewModelPredictiveController constructs a ModelPredictiveController,
// filling in defaults for a non-positive HorizonGroups or
// BufferCostWeight and for a negative MaxWaitGroups.
func NewModelPredictiveController(opts ModelPredictiveControllerOptions) *ModelPredictiveController {
	if opts.HorizonGroups <= 0 {
		opts.HorizonGroups = DefaultHorizonGroups
	}
	if opts.BufferCostWeight <= 0 {
		opts.BufferCostWeight = DefaultBufferCostWeight
	}
	if opts.MaxWaitGroups < 0 {
		opts.MaxWaitGroups = DefaultMaxWaitGroups
	}
	return &ModelPredictiveController{opts: opts}
}

// candidate is one enumerated (wait, bitrate-vector) action under
// consideration.
type candidate struct {
	wait       int
	bitrateIDs []int
	score      float64
}

// Decide implements ABRController.
func (c *ModelPredictiveController) Decide(ctx Context) multiviewabr.ControlAction {
	streamCount := ctx.Config.StreamCount
	rungCount := ctx.Config.BitrateCount()

	var best *candidate
	for wait := 0; wait <= c.opts.MaxWaitGroups; wait++ {
		for _, ids := range c.enumerateBitrateVectors(ctx, streamCount, rungCount) {
			score := c.score(ctx, wait, ids)
			cand := candidate{wait: wait, bitrateIDs: ids, score: score}
			if best == nil || betterCandidate(cand, *best) {
				cp := cand
				best = &cp
			}
		}
	}

	if best == nil {
		// Degenerate case (zero streams or zero rungs): hold everything
		// at rung 0 and don't wait.
		return multiviewabr.ControlAction{WaitGroupCount: 0, BitrateIDs: make([]int, streamCount)}
	}
	return multiviewabr.ControlAction{WaitGroupCount: best.wait, BitrateIDs: best.bitrateIDs}
}

// betterCandidate reports whether a should win over b: strictly higher
// score, or a tie broken by less waiting, then a lexicographically
// smaller bitrate vector.
func betterCandidate(a, b candidate) bool {
	const eps = 1e-9
	if a.score > b.score+eps {
		return true
	}
	if a.score < b.score-eps {
		return false
	}
	if a.wait != b.wait {
		return a.wait < b.wait
	}
	for i := range a.bitrateIDs {
		if a.bitrateIDs[i] != b.bitrateIDs[i] {
			return a.bitrateIDs[i] < b.bitrateIDs[i]
		}
	}
	return false
}

// enumerateBitrateVectors builds every candidate bitrate-id vector
// worth evaluating: per stream, every rung from 0 up to (and including,
// if AllowUpgrades) the stream's current rung plus one, pruned by a
// coarse total-bandwidth budget so the candidate set stays small.
func (c *ModelPredictiveController) enumerateBitrateVectors(ctx Context, streamCount, rungCount int) [][]int {
	if streamCount == 0 || rungCount == 0 {
		return nil
	}

	options := make([][]int, streamCount)
	for s := 0; s < streamCount; s++ {
		last := 0
		if s < len(ctx.LastBitrateIDs) {
			last = ctx.LastBitrateIDs[s]
		}
		maxRung := last
		if c.opts.AllowUpgrades && maxRung+1 < rungCount {
			maxRung = last + 1
		}
		if maxRung >= rungCount {
			maxRung = rungCount - 1
		}
		opts := make([]int, 0, maxRung+1)
		for r := 0; r <= maxRung; r++ {
			opts = append(opts, r)
		}
		options[s] = opts
	}

	budgetMbps := ctx.PredictedThroughputMbps * ctx.Config.RebufferSafety

	var vectors [][]int
	var recurse func(streamIdx int, current []int, totalMbps float64)
	recurse = func(streamIdx int, current []int, totalMbps float64) {
		if streamIdx == streamCount {
			cp := make([]int, streamCount)
			copy(cp, current)
			vectors = append(vectors, cp)
			return
		}
		for _, r := range options[streamIdx] {
			rate := ctx.Config.BitratesMbps[r]
			if totalMbps+rate > budgetMbps && r > 0 {
				// Adding this rung would blow the bandwidth budget;
				// skip it (rung 0 is always allowed through so every
				// stream has at least one feasible choice).
				continue
			}
			current[streamIdx] = r
			recurse(streamIdx+1, current, totalMbps+rate)
		}
	}
	recurse(0, make([]int, streamCount), 0)

	if len(vectors) == 0 {
		vectors = append(vectors, make([]int, streamCount))
	}
	return vectors
}

// score estimates a candidate's value for the next group only: the
// attention-weighted expected bitrate it delivers, minus a penalty for
// the buffer underrun or overflow its wait and one group's download
// produce, minus a small wait penalty.
func (c *ModelPredictiveController) score(ctx Context, wait int, bitrateIDs []int) float64 {
	weights := primaryWeights(ctx, len(bitrateIDs))

	expectedBitrate := 0.0
	totalMbps := 0.0
	for s, id := range bitrateIDs {
		rate := ctx.Config.BitratesMbps[id]
		expectedBitrate += weights[s] * rate
		totalMbps += rate
	}

	downloadSeconds := totalMbps / maxFloat(ctx.PredictedThroughputMbps, 1e-9)
	groupSeconds := ctx.Config.SegmentSeconds
	bufferAfter := ctx.BufferedSeconds + float64(wait)*groupSeconds - downloadSeconds

	rebufferRisk := 0.0
	if bufferAfter < 0 {
		rebufferRisk = -bufferAfter
	}
	overflowRisk := 0.0
	if bufferAfter > ctx.Config.MaxBufferSeconds {
		overflowRisk = bufferAfter - ctx.Config.MaxBufferSeconds
	}

	waitPenalty := float64(wait) * 0.01 * expectedBitrate

	return expectedBitrate - c.opts.BufferCostWeight*(rebufferRisk+overflowRisk) - waitPenalty
}

// primaryWeights returns the per-stream attention weight to use when
// scoring: the view forecast's first upcoming group if available,
// otherwise a one-hot weighting on stream 0 (the conventional primary
// view) matching ThroughputBasedController's convention.
func primaryWeights(ctx Context, streamCount int) []float64 {
	if len(ctx.ViewDistribution) > 0 && len(ctx.ViewDistribution[0]) == streamCount {
		return ctx.ViewDistribution[0]
	}
	weights := make([]float64, streamCount)
	if streamCount > 0 {
		weights[0] = 1.0
	}
	return weights
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

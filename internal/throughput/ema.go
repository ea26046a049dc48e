package throughput

import "math"

// Default half-lives for the fast and slow EMA tracks. Chosen in the
// range published dual-EWMA bandwidth estimators use (roughly a 1:2.5–3
// fast:slow split); exact decimal reproduction of the original's pinned
// numbers was not pursued by hand (see DESIGN.md Open-Question #3).
const (
	DefaultHalfLifeFastSeconds = 3.0
	DefaultHalfLifeSlowSeconds = 8.0
)

// EMAPredictor tracks the download *pace* (seconds per megabyte) with
// two bias-corrected exponential moving averages at different
// half-lives, and predicts throughput pessimistically from whichever
// track currently implies the slower (higher-pace) rate. This adapts
// quickly to sudden drops (the fast track) while not over-reacting to
// single-sample noise (the slow track).
type EMAPredictor struct {
	halfLifeFast float64
	halfLifeSlow float64

	rawFast, weightFast float64
	rawSlow, weightSlow float64
	hasSample           bool
}

// NewEMAPredictor constructs an EMAPredictor with the given half-lives
// in seconds. Non-positive values fall back to the package defaults.
func NewEMAPredictor(halfLifeFast, halfLifeSlow float64) *EMAPredictor {
	if halfLifeFast <= 0 {
		halfLifeFast = DefaultHalfLifeFastSeconds
	}
	if halfLifeSlow <= 0 {
		halfLifeSlow = DefaultHalfLifeSlowSeconds
	}
	return &EMAPredictor{halfLifeFast: halfLifeFast, halfLifeSlow: halfLifeSlow}
}

// Update implements Predictor. bytesMB and durationSeconds describe one
// completed download; the implied pace is durationSeconds/bytesMB
// seconds per megabyte.
func (p *EMAPredictor) Update(bytesMB, durationSeconds float64) {
	if bytesMB <= 0 || durationSeconds <= 0 {
		return
	}
	pace := durationSeconds / bytesMB

	alphaFast := emaAlpha(durationSeconds, p.halfLifeFast)
	alphaSlow := emaAlpha(durationSeconds, p.halfLifeSlow)

	p.rawFast = (1-alphaFast)*p.rawFast + alphaFast*pace
	p.weightFast = (1-alphaFast)*p.weightFast + alphaFast
	p.rawSlow = (1-alphaSlow)*p.rawSlow + alphaSlow*pace
	p.weightSlow = (1-alphaSlow)*p.weightSlow + alphaSlow
	p.hasSample = true
}

// emaAlpha converts an elapsed duration and a half-life into the
// per-update smoothing factor alpha = 1 - exp(-d*ln2/h).
func emaAlpha(d, halfLife float64) float64 {
	return 1 - math.Exp(-d*math.Ln2/halfLife)
}

// PredictMbps implements Predictor.
func (p *EMAPredictor) PredictMbps() float64 {
	if !p.hasSample {
		return noDataPredictionMbps
	}

	correctedFast := p.correctedPace(p.rawFast, p.weightFast)
	correctedSlow := p.correctedPace(p.rawSlow, p.weightSlow)

	pessimisticPace := math.Max(correctedFast, correctedSlow)
	if pessimisticPace <= 0 {
		return noDataPredictionMbps
	}
	return 8.0 / pessimisticPace
}

func (p *EMAPredictor) correctedPace(raw, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	return raw / weight
}

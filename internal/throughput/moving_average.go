package throughput

// DefaultMovingAverageWindowSeconds is the default trailing window over
// which MovingAveragePredictor averages throughput.
const DefaultMovingAverageWindowSeconds = 4.0

type sample struct {
	bytesMB  float64
	duration float64
}

// MovingAveragePredictor forecasts throughput as the harmonic mean of
// recent downloads, weighted by bytes transferred: predicted =
// 8*sum(bytesMB)/sum(duration) over a trailing *time* window (not a
// trailing sample count). Samples are trimmed from the front of the
// queue while the remaining total duration, less the oldest sample's
// own duration, still covers the window — i.e. the oldest sample is
// dropped only once it has fully aged out.
//
// This time-window trim rule (rather than the vaguer "last N samples")
// was reverse-engineered from the pinned values in
// original_source/tests/ThroughputPredictors/MovingAveragePredictorTest.cpp;
// see DESIGN.md Open-Question #2.
type MovingAveragePredictor struct {
	windowSeconds float64
	samples       []sample
	totalBytesMB  float64
	totalDuration float64
}

// NewMovingAveragePredictor constructs a predictor with the given
// trailing window. A non-positive window falls back to the default.
func NewMovingAveragePredictor(windowSeconds float64) *MovingAveragePredictor {
	if windowSeconds <= 0 {
		windowSeconds = DefaultMovingAverageWindowSeconds
	}
	return &MovingAveragePredictor{windowSeconds: windowSeconds}
}

// Update implements Predictor.
func (p *MovingAveragePredictor) Update(bytesMB, durationSeconds float64) {
	if durationSeconds <= 0 {
		return
	}
	p.samples = append(p.samples, sample{bytesMB: bytesMB, duration: durationSeconds})
	p.totalBytesMB += bytesMB
	p.totalDuration += durationSeconds

	for len(p.samples) > 1 {
		oldest := p.samples[0]
		if p.totalDuration-oldest.duration < p.windowSeconds {
			break
		}
		p.totalBytesMB -= oldest.bytesMB
		p.totalDuration -= oldest.duration
		p.samples = p.samples[1:]
	}
}

// PredictMbps implements Predictor.
func (p *MovingAveragePredictor) PredictMbps() float64 {
	if len(p.samples) == 0 || p.totalDuration <= 0 {
		return noDataPredictionMbps
	}
	return 8.0 * p.totalBytesMB / p.totalDuration
}

package view

import "math"

// DefaultMarkovWindowSeconds is the default length of view-id history
// the transition matrix is trained over.
const DefaultMarkovWindowSeconds = 4.0

// DefaultMarkovSmoothing is the Laplace (add-lambda) smoothing constant
// applied to the transition-count matrix, keeping every transition
// possible (nonzero probability) even before it has been observed.
const DefaultMarkovSmoothing = 1.0

// MarkovPredictorOptions configures a MarkovPredictor.
type MarkovPredictorOptions struct {
	WindowSeconds float64
	Smoothing     float64
}

// MarkovPredictor learns a first-order Markov chain over observed view
// ids and forecasts future view-tick distributions by repeatedly
// multiplying the current one-hot state by the learned transition
// matrix, then time-averages consecutive view-ticks into each
// segment-group row. Grounded on
// original_source/tests/ViewPredictors/MarkovPredictorTest.cpp.
type MarkovPredictor struct {
	streamCount    int
	viewTickSeconds float64
	segmentSeconds  float64
	windowSeconds   float64
	smoothing       float64

	history    []int // ring buffer of recent observed ids, oldest first
	historyCap int

	counts [][]float64 // transition counts, counts[from][to]
	last   int
	hasLast bool
}

// NewMarkovPredictor constructs a MarkovPredictor over streamCount
// views, observing at viewTickSeconds cadence and forecasting in
// segmentSeconds-wide groups.
func NewMarkovPredictor(streamCount int, viewTickSeconds, segmentSeconds float64, opts MarkovPredictorOptions) *MarkovPredictor {
	windowSeconds := opts.WindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = DefaultMarkovWindowSeconds
	}
	smoothing := opts.Smoothing
	if smoothing <= 0 {
		smoothing = DefaultMarkovSmoothing
	}

	historyCap := int(math.Ceil(windowSeconds/viewTickSeconds - 1e-9))
	if historyCap < 1 {
		historyCap = 1
	}

	counts := make([][]float64, streamCount)
	for i := range counts {
		counts[i] = make([]float64, streamCount)
	}

	return &MarkovPredictor{
		streamCount:     streamCount,
		viewTickSeconds: viewTickSeconds,
		segmentSeconds:  segmentSeconds,
		windowSeconds:   windowSeconds,
		smoothing:       smoothing,
		historyCap:      historyCap,
		counts:          counts,
	}
}

// Update implements Predictor. The transition-count matrix is kept over
// only the last historyCap observations: once the ring buffer is full,
// the oldest transition is aged out of counts before the new one is
// added, so estimation always reflects the trailing window_seconds of
// history rather than the whole session.
func (p *MarkovPredictor) Update(viewID int) {
	if viewID < 0 || viewID >= p.streamCount {
		return
	}

	if len(p.history) == p.historyCap && len(p.history) >= 2 {
		oldest, secondOldest := p.history[0], p.history[1]
		p.counts[oldest][secondOldest]--
	}

	if p.hasLast && p.historyCap >= 2 {
		p.counts[p.last][viewID]++
	}
	p.hasLast = true
	p.last = viewID

	p.history = append(p.history, viewID)
	if len(p.history) > p.historyCap {
		p.history = p.history[len(p.history)-p.historyCap:]
	}
}

// transitionMatrix returns the current Laplace-smoothed, row-normalized
// transition matrix.
func (p *MarkovPredictor) transitionMatrix() [][]float64 {
	n := p.streamCount
	m := make([][]float64, n)
	for from := 0; from < n; from++ {
		row := make([]float64, n)
		total := 0.0
		for to := 0; to < n; to++ {
			row[to] = p.counts[from][to] + p.smoothing
			total += row[to]
		}
		for to := 0; to < n; to++ {
			row[to] /= total
		}
		m[from] = row
	}
	return m
}

// PredictDistribution implements Predictor.
func (p *MarkovPredictor) PredictDistribution(groupCount int) [][]float64 {
	n := p.streamCount
	rows := make([][]float64, groupCount)

	state := make([]float64, n)
	if p.hasLast {
		state[p.last] = 1.0
	} else if n > 0 {
		// No observation yet: uniform prior.
		for i := range state {
			state[i] = 1.0 / float64(n)
		}
	}

	matrix := p.transitionMatrix()
	ticksPerGroup := int(p.segmentSeconds/p.viewTickSeconds + 0.5)
	if ticksPerGroup < 1 {
		ticksPerGroup = 1
	}

	for g := 0; g < groupCount; g++ {
		accum := make([]float64, n)
		for t := 0; t < ticksPerGroup; t++ {
			state = multiply(state, matrix)
			for i := range accum {
				accum[i] += state[i]
			}
		}
		for i := range accum {
			accum[i] /= float64(ticksPerGroup)
		}
		rows[g] = accum
	}
	return rows
}

// multiply computes state * matrix (row-vector times matrix).
func multiply(state []float64, matrix [][]float64) []float64 {
	n := len(state)
	out := make([]float64, n)
	for from := 0; from < n; from++ {
		p := state[from]
		if p == 0 {
			continue
		}
		row := matrix[from]
		for to := 0; to < n; to++ {
			out[to] += p * row[to]
		}
	}
	return out
}

// Package throughput implements the throughput-forecasting predictors an
// ABR controller consults before sizing its next download: a trailing
// time-windowed harmonic-mean average, and a dual-half-life
// bias-corrected exponential moving average. Grounded on
// original_source/tests/ThroughputPredictors/*, with the ring-buffer
// trimming idiom adapted from the teacher's
// internal/timeseries.ThroughputTracker.
package throughput

// Predictor forecasts the achievable throughput (in Mbps) for the next
// download, and is updated after every completed download with the
// bytes actually transferred and the time it took.
type Predictor interface {
	// Update records a completed download of bytesMB megabytes over
	// durationSeconds seconds.
	Update(bytesMB, durationSeconds float64)
	// PredictMbps returns the forecast throughput for the next download.
	PredictMbps() float64
}

// noDataPredictionMbps is returned before any sample has been observed.
// A conservative zero forecast means the very first segment of a
// session is always requested at the lowest bitrate rung, matching the
// opening group of original_source/tests/MultiviewABRSimulatorTest.cpp's
// end-to-end scenario (every stream starts at the bottom of the ladder).
const noDataPredictionMbps = 0


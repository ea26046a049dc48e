// Package view implements view (attention) predictors: forecasts of
// which of the StreamCount displayed views will be "primary" over the
// next several segment groups, used by the ABR controller to weight
// bitrate allocation across views. Grounded on
// original_source/tests/ViewPredictors/MarkovPredictorTest.cpp.
package view

// Predictor observes the ground-truth primary view one tick at a time
// and forecasts a probability distribution over views for upcoming
// segment groups.
type Predictor interface {
	// Update records the observed primary view id at the current tick.
	Update(viewID int)
	// PredictDistribution returns groupCount rows of StreamCount
	// probabilities each (rows sum to 1), one row per upcoming segment
	// group, each row time-averaged over the view-ticks that make up
	// that group.
	PredictDistribution(groupCount int) [][]float64
}

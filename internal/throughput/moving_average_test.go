package throughput

import "testing"

// TestMovingAveragePredictor_BasicPrediction reproduces the pinned
// scenario from
// original_source/tests/ThroughputPredictors/MovingAveragePredictorTest.cpp
// exactly, under the default 4-second trailing window (see DESIGN.md
// Open-Question #2 for how the window-trim rule was derived).
func TestMovingAveragePredictor_BasicPrediction(t *testing.T) {
	p := NewMovingAveragePredictor(0) // falls back to the 4s default

	p.Update(4, 2)
	if got := p.PredictMbps(); got != 16 {
		t.Errorf("after Update(4,2): PredictMbps() = %v, want 16", got)
	}

	p.Update(2, 2)
	if got := p.PredictMbps(); got != 12 {
		t.Errorf("after Update(2,2): PredictMbps() = %v, want 12", got)
	}

	p.Update(6, 2)
	if got := p.PredictMbps(); got != 16 {
		t.Errorf("after Update(6,2): PredictMbps() = %v, want 16", got)
	}

	p.Update(4, 4)
	if got := p.PredictMbps(); got != 8 {
		t.Errorf("after Update(4,4): PredictMbps() = %v, want 8", got)
	}
}

func TestMovingAveragePredictor_NoDataReturnsZero(t *testing.T) {
	p := NewMovingAveragePredictor(4)
	if got := p.PredictMbps(); got != noDataPredictionMbps {
		t.Errorf("PredictMbps() before any Update = %v, want %v", got, noDataPredictionMbps)
	}
}

func TestMovingAveragePredictor_ZeroDurationUpdateIgnored(t *testing.T) {
	p := NewMovingAveragePredictor(4)
	p.Update(10, 0)
	if got := p.PredictMbps(); got != noDataPredictionMbps {
		t.Errorf("PredictMbps() after zero-duration Update = %v, want %v", got, noDataPredictionMbps)
	}
}

func TestNewMovingAveragePredictor_NonPositiveWindowUsesDefault(t *testing.T) {
	p := NewMovingAveragePredictor(-1)
	if p.windowSeconds != DefaultMovingAverageWindowSeconds {
		t.Errorf("windowSeconds = %v, want default %v", p.windowSeconds, DefaultMovingAverageWindowSeconds)
	}
}

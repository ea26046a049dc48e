package throughput

import "testing"

// TestEMAPredictor_FirstSampleIsExact checks the bias-correction
// property: after exactly one observed sample, both tracks' corrected
// pace equals the observed pace exactly, so the very first prediction
// equals the raw observed rate regardless of half-life (the forecast
// only starts hedging once a second, differing sample arrives).
func TestEMAPredictor_FirstSampleIsExact(t *testing.T) {
	p := NewEMAPredictor(3, 8)
	p.Update(4, 2) // 4MB in 2s = 16 Mbps
	if got := p.PredictMbps(); got < 15.999 || got > 16.001 {
		t.Errorf("PredictMbps() after first sample = %v, want 16", got)
	}
}

func TestEMAPredictor_NoDataReturnsZero(t *testing.T) {
	p := NewEMAPredictor(3, 8)
	if got := p.PredictMbps(); got != noDataPredictionMbps {
		t.Errorf("PredictMbps() before any Update = %v, want %v", got, noDataPredictionMbps)
	}
}

func TestEMAPredictor_PessimisticOnThroughputDrop(t *testing.T) {
	p := NewEMAPredictor(3, 8)
	p.Update(16, 1) // 128 Mbps, fast start
	high := p.PredictMbps()

	p.Update(1, 8) // a single very slow download (1 MB in 8s = 1 Mbps)
	low := p.PredictMbps()

	if !(low < high) {
		t.Errorf("expected prediction to fall after a slow sample: before=%v after=%v", high, low)
	}
}

func TestEMAPredictor_IgnoresInvalidSamples(t *testing.T) {
	p := NewEMAPredictor(3, 8)
	p.Update(0, 5)
	p.Update(5, 0)
	p.Update(-1, 5)
	if got := p.PredictMbps(); got != noDataPredictionMbps {
		t.Errorf("PredictMbps() after only invalid Updates = %v, want %v", got, noDataPredictionMbps)
	}
}

func TestNewEMAPredictor_NonPositiveHalfLivesUseDefaults(t *testing.T) {
	p := NewEMAPredictor(-1, 0)
	if p.halfLifeFast != DefaultHalfLifeFastSeconds {
		t.Errorf("halfLifeFast = %v, want default %v", p.halfLifeFast, DefaultHalfLifeFastSeconds)
	}
	if p.halfLifeSlow != DefaultHalfLifeSlowSeconds {
		t.Errorf("halfLifeSlow = %v, want default %v", p.halfLifeSlow, DefaultHalfLifeSlowSeconds)
	}
}

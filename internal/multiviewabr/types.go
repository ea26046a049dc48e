// Package multiviewabr defines the shared data types for the multiview
// adaptive-bitrate streaming simulator: streaming configuration, input
// series, and the caller-facing output tensors. Concrete algorithms live
// in the sibling internal/network, internal/throughput, internal/view,
// internal/controller, internal/simulator, and internal/batch packages.
package multiviewabr

import "fmt"

// StreamingConfig describes the fixed parameters of a streaming session:
// segment cadence, the available bitrate ladder, the number of
// simultaneously displayed views, and the controller's safety/buffer
// budget.
type StreamingConfig struct {
	SegmentSeconds   float64
	BitratesMbps     []float64 // ascending
	StreamCount      int
	RebufferSafety   float64
	MaxBufferSeconds float64
}

// Validate checks the invariants spec.md places on StreamingConfig. Every
// failure here is contradictory configuration, not a shape mismatch (see
// spec.md §7), so all of them report *ConfigError.
func (c StreamingConfig) Validate() error {
	if c.SegmentSeconds <= 0 {
		return &ConfigError{Field: "segment_seconds", Message: "must be positive"}
	}
	if len(c.BitratesMbps) == 0 {
		return &ConfigError{Field: "bitrates_mbps", Message: "must not be empty"}
	}
	for i := 1; i < len(c.BitratesMbps); i++ {
		if c.BitratesMbps[i] <= c.BitratesMbps[i-1] {
			return &ConfigError{Field: "bitrates_mbps", Message: "must be strictly ascending"}
		}
	}
	if c.StreamCount < 1 {
		return &ConfigError{Field: "stream_count", Message: "must be at least 1"}
	}
	if c.RebufferSafety <= 0 || c.RebufferSafety > 1 {
		return &ConfigError{Field: "rebuffer_safety", Message: "must be in (0, 1]"}
	}
	if c.MaxBufferSeconds <= 0 {
		return &ConfigError{Field: "max_buffer_seconds", Message: "must be positive"}
	}
	return nil
}

// BitrateCount returns the number of rungs in the bitrate ladder.
func (c StreamingConfig) BitrateCount() int { return len(c.BitratesMbps) }

// NetworkSeries is a piecewise-constant throughput trace: ThroughputMbps[i]
// holds for the half-open interval [i*TickSeconds, (i+1)*TickSeconds).
// The series repeats cyclically once a session runs past its length (see
// internal/network and DESIGN.md, Open-Question #1).
type NetworkSeries struct {
	TickSeconds    float64
	ThroughputMbps []float64
}

// Validate checks NetworkSeries invariants.
func (s NetworkSeries) Validate() error {
	if s.TickSeconds <= 0 {
		return &ShapeError{Field: "tick_seconds", Message: "must be positive"}
	}
	if len(s.ThroughputMbps) == 0 {
		return &ShapeError{Field: "throughput_mbps", Message: "must not be empty"}
	}
	for i, v := range s.ThroughputMbps {
		if v < 0 {
			return &DataError{Message: fmt.Sprintf("throughput_mbps[%d] is negative", i)}
		}
	}
	return nil
}

// PrimaryStreamSeries is the ground-truth sequence of which view is the
// "primary" (largest-on-screen) view, sampled every TickSeconds. The
// view predictor observes this online, one tick at a time.
type PrimaryStreamSeries struct {
	TickSeconds float64
	ViewIDs     []int
}

// Validate checks PrimaryStreamSeries invariants against a stream count.
func (s PrimaryStreamSeries) Validate(streamCount int) error {
	if s.TickSeconds <= 0 {
		return &ShapeError{Field: "tick_seconds", Message: "must be positive"}
	}
	if len(s.ViewIDs) == 0 {
		return &ShapeError{Field: "view_ids", Message: "must not be empty"}
	}
	for i, id := range s.ViewIDs {
		if id < 0 || id >= streamCount {
			return &DataError{Message: fmt.Sprintf("view_ids[%d]=%d out of range [0,%d)", i, id, streamCount)}
		}
	}
	return nil
}

// TimedValue is the result of a network download: the wall-clock seconds
// it took, and the megabytes actually transferred (which can be less than
// requested if a download was capped by maxSeconds).
type TimedValue struct {
	Seconds float64
	MB      float64
}

// ControlAction is an ABR controller's decision for the upcoming group:
// how many segment-groups to wait before resuming downloads (almost
// always 0; nonzero only for deliberate pacing), and which bitrate rung
// to request for each of the StreamCount views.
type ControlAction struct {
	WaitGroupCount int
	BitrateIDs     []int
}

// Grid2D is a caller-allocated, row-major, strided 2-D buffer. The core
// never reallocates or reshapes it — only writes into Data at
// row*Cols+col.
type Grid2D struct {
	Data []float64
	Rows int
	Cols int
}

// NewGrid2D allocates a zeroed Grid2D of the given shape.
func NewGrid2D(rows, cols int) Grid2D {
	return Grid2D{Data: make([]float64, rows*cols), Rows: rows, Cols: cols}
}

// At returns the value at (row, col).
func (g Grid2D) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

// Set writes value at (row, col).
func (g Grid2D) Set(row, col int, value float64) {
	g.Data[row*g.Cols+col] = value
}

// Row returns a slice view over row r's Cols contiguous values.
func (g Grid2D) Row(r int) []float64 {
	return g.Data[r*g.Cols : (r+1)*g.Cols]
}

// SessionResult is one session's caller-facing simulation output, the Go
// analogue of the LibraryLink DataList produced by
// original_source/src/MultiviewABRSimulationLink.cpp.
type SessionResult struct {
	RebufferingSeconds          float64
	BufferedBitratesMbps        Grid2D // [group][stream]
	PrimaryStreamDistributions  Grid2D // [group][stream], optional (nil Data if not requested)
	DownloadedMB                float64
	RawWastedMB                 float64
}

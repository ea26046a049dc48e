package manifest

import (
	"strings"
	"testing"

	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
)

const validJSON = `{
	"network_data": [
		{"TickSeconds": 1, "ThroughputMbps": [5, 5, 5]}
	],
	"primary_stream_data": [
		{"TickSeconds": 2, "ViewIDs": [0, 1]}
	],
	"duration_seconds": 10
}`

var validConfig = multiviewabr.StreamingConfig{
	SegmentSeconds: 2, BitratesMbps: []float64{1, 2, 4, 8}, StreamCount: 2,
	RebufferSafety: 0.75, MaxBufferSeconds: 30,
}

func TestParse_Valid(t *testing.T) {
	doc, err := Parse(strings.NewReader(validJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := doc.Validate(validConfig); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if doc.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", doc.SessionCount())
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse(strings.NewReader("{not json"))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestValidate_EmptyNetworkData(t *testing.T) {
	doc := &Document{DurationSeconds: 10}
	if err := doc.Validate(validConfig); err == nil {
		t.Fatal("expected error for empty network_data")
	}
}

func TestValidate_MismatchedTraceCounts(t *testing.T) {
	doc := &Document{
		NetworkData: []multiviewabr.NetworkSeries{
			{TickSeconds: 1, ThroughputMbps: []float64{5}},
			{TickSeconds: 1, ThroughputMbps: []float64{5}},
		},
		PrimaryStreamData: []multiviewabr.PrimaryStreamSeries{
			{TickSeconds: 1, ViewIDs: []int{0, 0}},
		},
		DurationSeconds: 10,
	}
	if err := doc.Validate(validConfig); err == nil {
		t.Fatal("expected error for mismatched trace counts")
	}
}

func TestValidate_ZeroDurationAllowed(t *testing.T) {
	// 0 means "use each session's full trace" — not an error.
	doc := &Document{
		NetworkData: []multiviewabr.NetworkSeries{
			{TickSeconds: 1, ThroughputMbps: []float64{5}},
		},
		PrimaryStreamData: []multiviewabr.PrimaryStreamSeries{
			{TickSeconds: 1, ViewIDs: []int{0, 0}},
		},
	}
	if err := doc.Validate(validConfig); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_NegativeDuration(t *testing.T) {
	doc := &Document{
		NetworkData: []multiviewabr.NetworkSeries{
			{TickSeconds: 1, ThroughputMbps: []float64{5}},
		},
		PrimaryStreamData: []multiviewabr.PrimaryStreamSeries{
			{TickSeconds: 1, ViewIDs: []int{0, 0}},
		},
		DurationSeconds: -1,
	}
	if err := doc.Validate(validConfig); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestValidate_InvalidNetworkSeries(t *testing.T) {
	doc := &Document{
		NetworkData: []multiviewabr.NetworkSeries{
			{TickSeconds: 1, ThroughputMbps: []float64{-5}},
		},
		PrimaryStreamData: []multiviewabr.PrimaryStreamSeries{
			{TickSeconds: 1, ViewIDs: []int{0, 0}},
		},
		DurationSeconds: 10,
	}
	if err := doc.Validate(validConfig); err == nil {
		t.Fatal("expected error for negative throughput sample")
	}
}

func TestValidate_InvalidPrimaryStreamSeries(t *testing.T) {
	doc := &Document{
		NetworkData: []multiviewabr.NetworkSeries{
			{TickSeconds: 1, ThroughputMbps: []float64{5}},
		},
		PrimaryStreamData: []multiviewabr.PrimaryStreamSeries{
			{TickSeconds: 1, ViewIDs: []int{5}}, // out of range for StreamCount=2
		},
		DurationSeconds: 10,
	}
	if err := doc.Validate(validConfig); err == nil {
		t.Fatal("expected error for out-of-range view id")
	}
}

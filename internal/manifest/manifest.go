// Package manifest loads the JSON document that drives a batch run: one
// network trace and primary-view trace per session. It plays the role
// the teacher's internal/config flag parsing plays for a stream URL —
// except here the "target" is recorded data, not a live endpoint, so it
// arrives as a file instead of a flag value. The streaming config shared
// by every session in the batch comes from internal/config instead, so
// the same ladder/buffer tuning can be swapped via flags without editing
// the manifest.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/randomizedcoder/multiview-abr-sim/internal/multiviewabr"
)

// Document is the on-disk shape of a manifest: the per-session network
// and primary-view traces that drive each batch session. len(NetworkData)
// is the batch size; PrimaryStreamData must be the same length.
type Document struct {
	NetworkData       []multiviewabr.NetworkSeries        `json:"network_data"`
	PrimaryStreamData []multiviewabr.PrimaryStreamSeries  `json:"primary_stream_data"`
	DurationSeconds   float64                             `json:"duration_seconds"`
}

// Load reads and parses a manifest document from path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a manifest document from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &doc, nil
}

// SessionCount returns the number of sessions the manifest describes.
func (d *Document) SessionCount() int {
	return len(d.NetworkData)
}

// Validate checks the manifest's shape invariants before any session
// runs: at least one session is present, the network and primary-view
// trace counts line up, and each trace is individually valid against
// cfg's stream count.
func (d *Document) Validate(cfg multiviewabr.StreamingConfig) error {
	if len(d.NetworkData) == 0 {
		return &multiviewabr.ShapeError{Field: "network_data", Message: "must not be empty"}
	}
	if len(d.PrimaryStreamData) != len(d.NetworkData) {
		return &multiviewabr.ShapeError{
			Field:   "primary_stream_data",
			Message: fmt.Sprintf("must have one entry per session: got %d, want %d", len(d.PrimaryStreamData), len(d.NetworkData)),
		}
	}
	if d.DurationSeconds < 0 {
		return &multiviewabr.ShapeError{Field: "duration_seconds", Message: "must not be negative"}
	}
	for i, series := range d.NetworkData {
		if err := series.Validate(); err != nil {
			return fmt.Errorf("network_data[%d]: %w", i, err)
		}
	}
	for i, series := range d.PrimaryStreamData {
		if err := series.Validate(cfg.StreamCount); err != nil {
			return fmt.Errorf("primary_stream_data[%d]: %w", i, err)
		}
	}
	return nil
}

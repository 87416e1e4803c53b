// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/diff"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// Report is the JSON layout of an exported comparison. Slices are never
// null so consumers can iterate without checks.
type Report struct {
	Left        string            `json:"left,omitempty"`
	Right       string            `json:"right,omitempty"`
	Pattern     string            `json:"pattern"`
	Summary     string            `json:"summary"`
	Stats       diff.Stats        `json:"stats"`
	MovedBlocks []diff.MovedBlock `json:"moved_blocks"`
	Entries     []diff.Entry      `json:"entries"`
	DurationMs  int64             `json:"duration_ms,omitempty"`
	ExportedAt  *time.Time        `json:"exported_at,omitempty"`
}

// JSONExporter exports comparisons as indented JSON.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// NewReport builds the JSON document for cmp.
func (e *JSONExporter) NewReport(cmp *compare.Comparison) Report {
	r := Report{
		Pattern:     cmp.Pattern,
		Summary:     cmp.Result.Summary(),
		Stats:       cmp.Result.Stats,
		MovedBlocks: cmp.Result.MovedBlocks(),
		Entries:     cmp.Result.Entries,
	}
	if r.MovedBlocks == nil {
		r.MovedBlocks = []diff.MovedBlock{}
	}
	if r.Entries == nil {
		r.Entries = []diff.Entry{}
	}
	if e.options.IncludeMetadata {
		r.Left = cmp.LeftPath
		r.Right = cmp.RightPath
		r.DurationMs = cmp.Duration.Milliseconds()
		at := e.options.now().UTC()
		r.ExportedAt = &at
	}
	return r
}

// Export converts a comparison to JSON.
func (e *JSONExporter) Export(cmp *compare.Comparison) ([]byte, error) {
	if err := validate(cmp); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(e.NewReport(cmp), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}

// Package report builds the machine-readable conversion summary emitted
// alongside every conversion. Every quarantined record, skipped segment
// and unresolved reference appears here so fidelity loss is always visible
// and attributable.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"acdex/internal/container"
	"acdex/internal/integrity"
	"acdex/internal/model"
	"acdex/internal/recdb"
)

// Counts summarizes the populated component totals.
type Counts struct {
	VirtualFiles      int `json:"virtual_files"`
	Records           int `json:"records"`
	Programs          int `json:"programs"`
	Routines          int `json:"routines"`
	Rungs             int `json:"rungs"`
	Tags              int `json:"tags"`
	DataTypes         int `json:"data_types"`
	Modules           int `json:"modules"`
	AddOnInstructions int `json:"add_on_instructions"`
	Tasks             int `json:"tasks"`
	Comments          int `json:"comments"`
}

// PartialRung identifies a rung that kept an unresolved placeholder.
type PartialRung struct {
	Program    string   `json:"program"`
	Routine    string   `json:"routine"`
	Number     uint32   `json:"number"`
	Unresolved []string `json:"unresolved"`
}

// Report is the conversion summary artifact.
type Report struct {
	Source            string                       `json:"source"`
	Counts            Counts                       `json:"counts"`
	Score             integrity.Score              `json:"score"`
	SkippedSegments   []container.SkippedCandidate `json:"skipped_segments,omitempty"`
	MalformedRecords  []recdb.Malformed            `json:"malformed_records,omitempty"`
	ExcessMalformed   []string                     `json:"excess_malformed_files,omitempty"`
	QuarantinedCount  int                          `json:"quarantined_count,omitempty"`
	PartialRungs      []PartialRung                `json:"partial_rungs,omitempty"`
	Warnings          []model.Warning              `json:"warnings,omitempty"`
	InstructionCounts map[string]int               `json:"instruction_counts,omitempty"`
	Degraded          bool                         `json:"degraded,omitempty"`
	DegradedReason    string                       `json:"degraded_reason,omitempty"`
}

// Marshal renders the report as indented JSON with a trailing newline.
// Map keys serialize sorted, so output is deterministic.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes the report next to a conversion output.
func (r *Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

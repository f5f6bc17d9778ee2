// Package config loads the optional YAML options file for conversion
// runs. Precedence is flag > file > default; the CLI applies flags on top
// of what this package returns.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"acdex/internal/integrity"
	"acdex/internal/pipeline"
)

// File is the on-disk options layout.
type File struct {
	SkipComments          bool                `yaml:"skip_comments"`
	SkipSbRegion          bool                `yaml:"skip_sb_region"`
	MalformedWarnFraction float64             `yaml:"malformed_warn_fraction"`
	SegmentBudgetBytes    int64               `yaml:"segment_budget_bytes"`
	Manifest              map[int]string      `yaml:"manifest"`
	Expected              *integrity.Expected `yaml:"expected"`
	SoftwareRevision      string              `yaml:"software_revision"`
	DeadlineSeconds       int                 `yaml:"deadline_seconds"`
	Workers               int                 `yaml:"workers"`
}

// Load reads and parses an options file. A missing path returns an empty
// File, so callers can treat the file as optional.
func Load(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &f, nil
}

// PipelineOptions maps the file onto pipeline options.
func (f *File) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		SkipComments:          f.SkipComments,
		SkipSbRegion:          f.SkipSbRegion,
		MalformedWarnFraction: f.MalformedWarnFraction,
		SegmentBudget:         f.SegmentBudgetBytes,
		ManifestOverrides:     f.Manifest,
		Expected:              f.Expected,
		Workers:               f.Workers,
	}
}

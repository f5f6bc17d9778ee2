// Package integrity measures how much of the original project's semantic
// content survived conversion, and structurally compares two intermediate
// models for round-trip validation.
package integrity

import (
	"strings"

	"acdex/internal/model"
)

// Level buckets an overall score into a preservation grade.
type Level string

const (
	LevelMetadataOnly     Level = "MetadataOnly"
	LevelBasicStructure   Level = "BasicStructure"
	LevelPartialLogic     Level = "PartialLogic"
	LevelComprehensive    Level = "Comprehensive"
	LevelIndustryStandard Level = "IndustryStandard"
)

// Sub-score weights. They sum to 1.0.
const (
	weightLogic  = 0.40
	weightTag    = 0.25
	weightIO     = 0.15
	weightMotion = 0.10
	weightSafety = 0.10
)

// Score is the weighted preservation metric for one conversion. Computed
// once, never mutated; recompute to get a new value.
type Score struct {
	Overall float64 `json:"overall"`
	Logic   float64 `json:"logic"`
	Tag     float64 `json:"tag"`
	IO      float64 `json:"io"`
	Motion  float64 `json:"motion"`
	Safety  float64 `json:"safety"`
	Level   Level   `json:"level"`
}

// Expected carries externally supplied totals, e.g. from a companion
// metadata file. A zero field means "use what the model contains".
type Expected struct {
	Rungs   int `yaml:"rungs" json:"rungs"`
	Tags    int `yaml:"tags" json:"tags"`
	Modules int `yaml:"modules" json:"modules"`
}

// motionMnemonics are the motion-control instructions counted for the
// motion sub-score.
var motionMnemonics = map[string]bool{
	"MAM": true, "MAS": true, "MSO": true, "MSF": true,
	"MAH": true, "MAJ": true, "MAG": true, "MDO": true,
}

// Compute scores the project. A rung still marked partial counts as
// not-preserved for the logic sub-score; a tag without a data type counts
// as not-preserved for the tag sub-score.
func Compute(p *model.Project, exp *Expected) Score {
	var (
		totalRungs, okRungs     int
		totalMotion, okMotion   int
		totalSafety, okSafety   int
		totalTags, okTags       int
		totalModules, okModules int
	)

	if p != nil && p.Controller != nil {
		ctrl := p.Controller
		for _, prog := range ctrl.Programs.All() {
			safetyProgram := prog.Class == "Safety"
			for _, routine := range prog.Routines.All() {
				for i := range routine.Rungs {
					r := &routine.Rungs[i]
					totalRungs++
					if !r.Partial {
						okRungs++
					}
					if isMotionRung(r.Text) {
						totalMotion++
						if !r.Partial {
							okMotion++
						}
					}
					if safetyProgram {
						totalSafety++
						if !r.Partial {
							okSafety++
						}
					}
				}
			}
		}
		for _, tag := range ctrl.Tags.All() {
			totalTags++
			preserved := tag.DataType != ""
			if preserved {
				okTags++
			}
			if tag.Safety {
				totalSafety++
				if preserved {
					okSafety++
				}
			}
		}
		for _, mod := range ctrl.Modules.All() {
			totalModules++
			if mod.CatalogNumber != "" {
				okModules++
			}
		}
	}

	if exp != nil {
		totalRungs = maxInt(totalRungs, exp.Rungs)
		totalTags = maxInt(totalTags, exp.Tags)
		totalModules = maxInt(totalModules, exp.Modules)
	}

	s := Score{
		Logic:  subScore(okRungs, totalRungs),
		Tag:    subScore(okTags, totalTags),
		IO:     subScore(okModules, totalModules),
		Motion: subScore(okMotion, totalMotion),
		Safety: subScore(okSafety, totalSafety),
	}
	s.Overall = weightLogic*s.Logic +
		weightTag*s.Tag +
		weightIO*s.IO +
		weightMotion*s.Motion +
		weightSafety*s.Safety
	s.Level = levelFor(s.Overall)
	return s
}

// subScore is preserved/total scaled to [0,100]. A total of zero means
// there was nothing to preserve, which is full preservation.
func subScore(preserved, total int) float64 {
	if total <= 0 {
		return 100
	}
	v := float64(preserved) / float64(total) * 100
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func levelFor(overall float64) Level {
	switch {
	case overall < 20:
		return LevelMetadataOnly
	case overall < 50:
		return LevelBasicStructure
	case overall < 80:
		return LevelPartialLogic
	case overall < 95:
		return LevelComprehensive
	default:
		return LevelIndustryStandard
	}
}

// isMotionRung reports whether the rung text invokes a motion instruction.
func isMotionRung(text string) bool {
	for mnemonic := range motionMnemonics {
		if strings.Contains(text, mnemonic+"(") {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

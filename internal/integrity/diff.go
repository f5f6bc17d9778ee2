package integrity

import (
	"fmt"
	"sort"

	"acdex/internal/model"
)

// CountDelta is a per-component-type count comparison.
type CountDelta struct {
	Component string `json:"component"`
	Original  int    `json:"original"`
	Reparsed  int    `json:"reparsed"`
}

// Diff is the round-trip validator's structural comparison of two models.
// A mismatch is reported, never fatal: it is the validator's output, not a
// failure of the validator itself.
type Diff struct {
	Deltas            []CountDelta `json:"count_deltas"`
	OnlyInOriginal    []string     `json:"only_in_original,omitempty"`
	OnlyInReparsed    []string     `json:"only_in_reparsed,omitempty"`
	StructurallyEqual bool         `json:"structurally_equal"`
}

// Compare diffs two already-parsed models. Pure comparison: neither input
// is mutated and no I/O is performed.
func Compare(original, reparsed *model.Project) *Diff {
	a := componentIndex(original)
	b := componentIndex(reparsed)

	d := &Diff{StructurallyEqual: true}

	order := []string{"Programs", "Routines", "Rungs", "Tags", "DataTypes", "Modules", "AddOnInstructions", "Tasks"}
	for _, comp := range order {
		delta := CountDelta{Component: comp, Original: a.counts[comp], Reparsed: b.counts[comp]}
		d.Deltas = append(d.Deltas, delta)
		if delta.Original != delta.Reparsed {
			d.StructurallyEqual = false
		}
	}

	for name := range a.names {
		if !b.names[name] {
			d.OnlyInOriginal = append(d.OnlyInOriginal, name)
		}
	}
	for name := range b.names {
		if !a.names[name] {
			d.OnlyInReparsed = append(d.OnlyInReparsed, name)
		}
	}
	sort.Strings(d.OnlyInOriginal)
	sort.Strings(d.OnlyInReparsed)
	if len(d.OnlyInOriginal) > 0 || len(d.OnlyInReparsed) > 0 {
		d.StructurallyEqual = false
	}

	return d
}

type index struct {
	counts map[string]int
	names  map[string]bool
}

func componentIndex(p *model.Project) index {
	idx := index{counts: make(map[string]int), names: make(map[string]bool)}
	if p == nil || p.Controller == nil {
		return idx
	}
	ctrl := p.Controller

	for _, prog := range ctrl.Programs.All() {
		idx.counts["Programs"]++
		idx.names["Program/"+prog.Name] = true
		for _, routine := range prog.Routines.All() {
			idx.counts["Routines"]++
			idx.names[fmt.Sprintf("Routine/%s/%s", prog.Name, routine.Name)] = true
			idx.counts["Rungs"] += len(routine.Rungs)
		}
	}
	for _, tag := range ctrl.Tags.All() {
		idx.counts["Tags"]++
		idx.names["Tag/"+tag.Name] = true
	}
	for _, dt := range ctrl.DataTypes.All() {
		idx.counts["DataTypes"]++
		idx.names["DataType/"+dt.Name] = true
	}
	for _, mod := range ctrl.Modules.All() {
		idx.counts["Modules"]++
		idx.names["Module/"+mod.Name] = true
	}
	for _, aoi := range ctrl.AddOnInstructions.All() {
		idx.counts["AddOnInstructions"]++
		idx.names["AddOnInstruction/"+aoi.Name] = true
	}
	for _, task := range ctrl.Tasks.All() {
		idx.counts["Tasks"]++
		idx.names["Task/"+task.Name] = true
	}
	return idx
}

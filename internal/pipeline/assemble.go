package pipeline

import (
	"fmt"
	"strings"

	"acdex/internal/model"
	"acdex/internal/recdb"
	"acdex/internal/report"
	"acdex/internal/rung"
	"acdex/internal/symbol"
)

// assembly is the intermediate model plus the bookkeeping the report
// needs.
type assembly struct {
	Project           *model.Project
	PartialRungs      []report.PartialRung
	InstructionCounts map[string]int
	CommentCount      int
	QuarantinedCount  int
	Warnings          []model.Warning
}

// assemble walks the component tree and builds the owned hierarchy. No
// parsing logic lives here, only structural assembly; payload decode
// failures degrade to warnings.
func assemble(comps, sbRegion, comments *recdb.Result, syms *symbol.Table) *assembly {
	a := &assembly{InstructionCounts: make(map[string]int)}

	var records []recdb.Record
	if comps != nil {
		records = comps.Records
	}
	tree := recdb.NewTree(records)
	a.QuarantinedCount = len(tree.Quarantined())

	ctrlRec := findController(tree)
	if ctrlRec == nil {
		a.warn("Controller", "no controller record found")
		a.Project = model.NewProject("")
		return a
	}

	proj := model.NewProject(ctrlRec.Name)
	a.Project = proj
	ctrl := proj.Controller
	if info, err := recdb.DecodeControllerPayload(ctrlRec.Payload); err == nil {
		ctrl.ProcessorType = info.ProcessorType
		ctrl.MajorRev = info.MajorRev
		ctrl.MinorRev = info.MinorRev
	} else {
		a.warn("Controller/"+ctrlRec.Name, fmt.Sprintf("payload: %v", err))
	}

	for _, child := range tree.Children(ctrlRec.ObjectID) {
		switch child.Kind {
		case recdb.KindProgram:
			a.assembleProgram(tree, child, syms)
		case recdb.KindTag:
			a.assembleTag(child)
		case recdb.KindDataType:
			a.assembleDataType(child)
		case recdb.KindModule:
			a.assembleModule(child)
		case recdb.KindAddOnInstruction:
			a.assembleAOI(child)
		case recdb.KindTask:
			a.assembleTask(child)
		}
	}

	if sbRegion != nil {
		a.attachRegionRungs(sbRegion, syms)
	}
	a.numberRungs()
	if comments != nil {
		a.attachComments(comments)
	}
	a.countInstructions()

	return a
}

func (a *assembly) warn(component, message string) {
	a.Warnings = append(a.Warnings, model.Warning{Component: component, Message: message})
}

// findController returns the first root controller record, falling back to
// the first controller anywhere in case the root linkage was lost.
func findController(tree *recdb.Tree) *recdb.Record {
	for _, root := range tree.Roots() {
		if root.Kind == recdb.KindController {
			return root
		}
	}
	for _, rec := range tree.Quarantined() {
		if rec.Kind == recdb.KindController {
			return rec
		}
	}
	return nil
}

func (a *assembly) assembleProgram(tree *recdb.Tree, rec *recdb.Record, syms *symbol.Table) {
	prog := &model.Program{Name: rec.Name, Class: "Standard"}
	if info, err := recdb.DecodeProgramPayload(rec.Payload); err == nil {
		prog.MainRoutineName = info.MainRoutine
		if info.Safety {
			prog.Class = "Safety"
		}
	} else {
		a.warn("Program/"+rec.Name, fmt.Sprintf("payload: %v", err))
	}

	for _, child := range tree.Children(rec.ObjectID) {
		if child.Kind != recdb.KindRoutine {
			continue
		}
		routine := &model.Routine{Name: child.Name, Type: "RLL"}
		if info, err := recdb.DecodeRoutinePayload(child.Payload); err == nil {
			routine.Type = info.Type
		}
		for _, rr := range tree.Children(child.ObjectID) {
			if rr.Kind != recdb.KindRung {
				continue
			}
			a.appendRung(prog.Name, routine, rr.Seq, rr.Payload, syms)
		}
		prog.Routines.Add(routine)
	}
	a.Project.Controller.Programs.Add(prog)
}

// appendRung decodes one rung payload and records unresolved references.
func (a *assembly) appendRung(program string, routine *model.Routine, seq uint32, payload []byte, syms *symbol.Table) {
	decoded := rung.Decode(seq, payload, syms)
	routine.Rungs = append(routine.Rungs, model.Rung{
		Number:  decoded.Number,
		Text:    decoded.ResolvedText,
		Partial: decoded.Partial,
	})
	if decoded.Partial {
		a.PartialRungs = append(a.PartialRungs, report.PartialRung{
			Program:    program,
			Routine:    routine.Name,
			Number:     decoded.Number,
			Unresolved: decoded.Unresolved,
		})
	}
}

func (a *assembly) assembleTag(rec *recdb.Record) {
	tag := &model.Tag{Name: rec.Name}
	if info, err := recdb.DecodeTagPayload(rec.Payload); err == nil {
		tag.DataType = info.DataType
		tag.Radix = info.Radix
		tag.ExternalAccess = info.ExternalAccess
		tag.Constant = info.Constant
		tag.Safety = info.Safety
	} else {
		a.warn("Tag/"+rec.Name, fmt.Sprintf("payload: %v", err))
	}
	a.Project.Controller.Tags.Add(tag)
}

func (a *assembly) assembleDataType(rec *recdb.Record) {
	dt := &model.DataTypeDef{Name: rec.Name, Family: "NoFamily", Class: "User"}
	if info, err := recdb.DecodeDataTypePayload(rec.Payload); err == nil {
		for _, m := range info.Members {
			dt.Members = append(dt.Members, model.Member{
				Name:      m.Name,
				DataType:  m.DataType,
				Dimension: m.Dimension,
				Radix:     m.Radix,
				Hidden:    m.Hidden,
			})
		}
	} else {
		a.warn("DataType/"+rec.Name, fmt.Sprintf("payload: %v", err))
	}
	a.Project.Controller.DataTypes.Add(dt)
}

func (a *assembly) assembleModule(rec *recdb.Record) {
	mod := &model.Module{Name: rec.Name}
	if info, err := recdb.DecodeModulePayload(rec.Payload); err == nil {
		mod.CatalogNumber = info.CatalogNumber
		mod.Vendor = info.Vendor
		mod.ProductType = info.ProductType
		mod.ProductCode = info.ProductCode
		mod.Major = info.Major
		mod.Minor = info.Minor
	} else {
		a.warn("Module/"+rec.Name, fmt.Sprintf("payload: %v", err))
	}
	a.Project.Controller.Modules.Add(mod)
}

func (a *assembly) assembleAOI(rec *recdb.Record) {
	aoi := &model.AddOnInstruction{Name: rec.Name}
	if info, err := recdb.DecodeAddOnInstructionPayload(rec.Payload); err == nil {
		aoi.Revision = info.Revision
		for _, p := range info.Parameters {
			aoi.Parameters = append(aoi.Parameters, model.Parameter{
				Name:     p.Name,
				DataType: p.DataType,
				Usage:    p.Usage,
				Required: p.Required,
			})
		}
	} else {
		a.warn("AddOnInstruction/"+rec.Name, fmt.Sprintf("payload: %v", err))
	}
	a.Project.Controller.AddOnInstructions.Add(aoi)
}

func (a *assembly) assembleTask(rec *recdb.Record) {
	task := &model.Task{Name: rec.Name}
	if info, err := recdb.DecodeTaskPayload(rec.Payload); err == nil {
		task.Type = info.Type
		task.Priority = info.Priority
		task.RateMs = info.RateMs
		task.ScheduledPrograms = info.ScheduledPrograms
	} else {
		a.warn("Task/"+rec.Name, fmt.Sprintf("payload: %v", err))
	}
	a.Project.Controller.Tasks.Add(task)
}

// attachRegionRungs appends SbRegion rungs to their owning routines. The
// record name carries the routine path as "Program\Routine".
func (a *assembly) attachRegionRungs(sbRegion *recdb.Result, syms *symbol.Table) {
	for i := range sbRegion.Records {
		rec := &sbRegion.Records[i]
		if rec.Kind != recdb.KindRung {
			continue
		}
		progName, routineName, ok := strings.Cut(rec.Name, `\`)
		if !ok {
			a.warn("SbRegion", fmt.Sprintf("rung record %d has no routine path", rec.ObjectID))
			continue
		}
		prog, found := a.Project.Controller.Programs.ByName(progName)
		if !found {
			a.warn("SbRegion", fmt.Sprintf("rung record %d references unknown program %q", rec.ObjectID, progName))
			continue
		}
		routine, found := prog.Routines.ByName(routineName)
		if !found {
			a.warn("SbRegion", fmt.Sprintf("rung record %d references unknown routine %q", rec.ObjectID, rec.Name))
			continue
		}
		a.appendRung(progName, routine, rec.Seq, rec.Payload, syms)
	}
}

// numberRungs renumbers every routine's rungs by final position, the
// numbering the interchange format expects. Partial-rung report entries
// are renumbered along with them via the shared order, so they are
// recorded after this pass completes.
func (a *assembly) numberRungs() {
	for _, prog := range a.Project.Controller.Programs.All() {
		for _, routine := range prog.Routines.All() {
			for i := range routine.Rungs {
				routine.Rungs[i].Number = uint32(i)
			}
		}
	}
	// Re-point partial entries at the renumbered positions.
	for i := range a.PartialRungs {
		entry := &a.PartialRungs[i]
		prog, ok := a.Project.Controller.Programs.ByName(entry.Program)
		if !ok {
			continue
		}
		routine, ok := prog.Routines.ByName(entry.Routine)
		if !ok {
			continue
		}
		for j := range routine.Rungs {
			r := &routine.Rungs[j]
			if r.Partial && containsUnresolved(r.Text, entry.Unresolved) {
				entry.Number = r.Number
				break
			}
		}
	}
}

func containsUnresolved(text string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// attachComments joins Comments records to their target rungs by program,
// routine and rung number.
func (a *assembly) attachComments(comments *recdb.Result) {
	for i := range comments.Records {
		rec := &comments.Records[i]
		if rec.Kind != recdb.KindComment {
			continue
		}
		info, err := recdb.DecodeCommentPayload(rec.Payload)
		if err != nil {
			a.warn("Comments", fmt.Sprintf("record %d payload: %v", rec.ObjectID, err))
			continue
		}
		prog, ok := a.Project.Controller.Programs.ByName(info.Program)
		if !ok {
			a.warn("Comments", fmt.Sprintf("record %d targets unknown program %q", rec.ObjectID, info.Program))
			continue
		}
		routine, ok := prog.Routines.ByName(info.Routine)
		if !ok {
			a.warn("Comments", fmt.Sprintf("record %d targets unknown routine %q", rec.ObjectID, info.Routine))
			continue
		}
		if int(info.RungNumber) >= len(routine.Rungs) {
			a.warn("Comments", fmt.Sprintf("record %d targets rung %d beyond routine %q", rec.ObjectID, info.RungNumber, info.Routine))
			continue
		}
		routine.Rungs[info.RungNumber].Comment = rec.Name
		a.CommentCount++
	}
}

// countInstructions tallies mnemonics across every rung for the report's
// instruction inventory.
func (a *assembly) countInstructions() {
	for _, prog := range a.Project.Controller.Programs.All() {
		for _, routine := range prog.Routines.All() {
			for i := range routine.Rungs {
				for _, m := range rung.Mnemonics(routine.Rungs[i].Text) {
					a.InstructionCounts[m]++
				}
			}
		}
	}
}

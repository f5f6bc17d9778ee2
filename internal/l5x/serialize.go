package l5x

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"acdex/internal/model"
)

// SerializationError indicates a model invariant violation discovered at
// serialization time. Fatal: emitting the file would bake the violation
// into the interchange output.
type SerializationError struct {
	Component string
	Reason    string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize %s: %s", e.Component, e.Reason)
}

// IsSerializationError reports whether err is a serialization error.
func IsSerializationError(err error) bool {
	var se *SerializationError
	return errors.As(err, &se)
}

// Options control the volatile root attributes. ExportDate must be held
// fixed for the duration of one conversion so that serialize/reparse/
// serialize is byte-stable.
type Options struct {
	SchemaRevision   string
	SoftwareRevision string
	ExportDate       string
}

const defaultExportOptions = "References NoRawData L5KData DecoratedData Context Dependencies ForceProtectedEncoding"

func (o Options) withDefaults() Options {
	if o.SchemaRevision == "" {
		o.SchemaRevision = "1.0"
	}
	if o.SoftwareRevision == "" {
		o.SoftwareRevision = "35.00"
	}
	if o.ExportDate == "" {
		o.ExportDate = "Mon Jan 01 00:00:00 2024"
	}
	return o
}

var xmlHeader = []byte("<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\n")

// Serialize emits deterministic interchange XML for the project.
func Serialize(p *model.Project, opts Options) ([]byte, error) {
	doc, err := BuildDocument(p, opts)
	if err != nil {
		return nil, err
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal interchange XML: %w", err)
	}
	var buf bytes.Buffer
	buf.Write(xmlHeader)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// BuildDocument maps the model onto the interchange document tree,
// checking serialization invariants on the way.
func BuildDocument(p *model.Project, opts Options) (*Document, error) {
	if p == nil || p.Controller == nil {
		return nil, &SerializationError{Component: "Project", Reason: "no controller"}
	}
	opts = opts.withDefaults()
	ctrl := p.Controller

	doc := &Document{
		SchemaRevision:   opts.SchemaRevision,
		SoftwareRevision: opts.SoftwareRevision,
		TargetName:       ctrl.Name,
		TargetType:       "Controller",
		ContainsContext:  "false",
		ExportDate:       opts.ExportDate,
		ExportOptions:    defaultExportOptions,
		Controller: ControllerElem{
			Name:          ctrl.Name,
			ProcessorType: ctrl.ProcessorType,
			MajorRev:      ctrl.MajorRev,
			MinorRev:      ctrl.MinorRev,
			UUID:          StableID("controller", ctrl.Name),
		},
	}
	if ctrl.Description != "" {
		doc.Controller.Description = &CDATA{Value: ctrl.Description}
	}

	for _, dt := range ctrl.DataTypes.All() {
		elem := DataTypeElem{
			Name:   dt.Name,
			Family: orDefault(dt.Family, "NoFamily"),
			Class:  orDefault(dt.Class, "User"),
		}
		for _, m := range dt.Members {
			elem.Members.Members = append(elem.Members.Members, MemberElem{
				Name:      m.Name,
				DataType:  m.DataType,
				Dimension: m.Dimension,
				Radix:     orDefault(m.Radix, "Decimal"),
				Hidden:    m.Hidden,
			})
		}
		doc.Controller.DataTypes.DataTypes = append(doc.Controller.DataTypes.DataTypes, elem)
	}

	for _, mod := range ctrl.Modules.All() {
		doc.Controller.Modules.Modules = append(doc.Controller.Modules.Modules, ModuleElem{
			Name:          mod.Name,
			CatalogNumber: mod.CatalogNumber,
			Vendor:        mod.Vendor,
			ProductType:   mod.ProductType,
			ProductCode:   mod.ProductCode,
			Major:         mod.Major,
			Minor:         mod.Minor,
		})
	}

	for _, aoi := range ctrl.AddOnInstructions.All() {
		elem := AOIDefElem{
			Name:     aoi.Name,
			Revision: orDefault(aoi.Revision, "1.0"),
			UUID:     StableID("aoi", aoi.Name),
		}
		for _, param := range aoi.Parameters {
			elem.Parameters.Parameters = append(elem.Parameters.Parameters, ParameterElem{
				Name:     param.Name,
				DataType: param.DataType,
				Usage:    param.Usage,
				Required: param.Required,
			})
		}
		doc.Controller.AddOnInstructionDefinitions.Definitions = append(doc.Controller.AddOnInstructionDefinitions.Definitions, elem)
	}

	for _, tag := range ctrl.Tags.All() {
		if tag.DataType == "" {
			return nil, &SerializationError{
				Component: "Tag/" + tag.Name,
				Reason:    "no data type",
			}
		}
		elem := TagElem{
			Name:           tag.Name,
			TagType:        orDefault(tag.TagType, "Base"),
			DataType:       tag.DataType,
			Radix:          orDefault(tag.Radix, "Decimal"),
			Constant:       tag.Constant,
			ExternalAccess: orDefault(tag.ExternalAccess, "Read/Write"),
		}
		if tag.Safety {
			elem.Class = "Safety"
		}
		if tag.Description != "" {
			elem.Description = &CDATA{Value: tag.Description}
		}
		doc.Controller.Tags.Tags = append(doc.Controller.Tags.Tags, elem)
	}

	for _, prog := range ctrl.Programs.All() {
		elem := ProgramElem{
			Name:            prog.Name,
			Class:           orDefault(prog.Class, "Standard"),
			MainRoutineName: prog.MainRoutineName,
		}
		for _, routine := range prog.Routines.All() {
			relem := RoutineElem{
				Name: routine.Name,
				Type: orDefault(routine.Type, "RLL"),
			}
			if relem.Type == "RLL" {
				content := &RLLContentElem{}
				for _, r := range routine.Rungs {
					rung := RungElem{
						Number: r.Number,
						Type:   "N",
						Text:   CDATA{Value: r.Text},
					}
					if r.Comment != "" {
						rung.Comment = &CDATA{Value: r.Comment}
					}
					content.Rungs = append(content.Rungs, rung)
				}
				relem.RLLContent = content
			}
			elem.Routines.Routines = append(elem.Routines.Routines, relem)
		}
		doc.Controller.Programs.Programs = append(doc.Controller.Programs.Programs, elem)
	}

	for _, task := range ctrl.Tasks.All() {
		elem := TaskElem{
			Name:     task.Name,
			Type:     orDefault(task.Type, "CONTINUOUS"),
			Priority: task.Priority,
			Rate:     task.RateMs,
		}
		for _, name := range task.ScheduledPrograms {
			elem.ScheduledPrograms.Programs = append(elem.ScheduledPrograms.Programs, ScheduledProgramElem{Name: name})
		}
		doc.Controller.Tasks.Tasks = append(doc.Controller.Tasks.Tasks, elem)
	}

	return doc, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

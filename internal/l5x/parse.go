package l5x

import (
	"encoding/xml"
	"fmt"

	"acdex/internal/model"
	"acdex/internal/rung"
)

// Parse reads interchange XML back into an intermediate project. Used by
// the round-trip validator and by validate runs against previously
// exported files.
func Parse(data []byte) (*model.Project, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return ProjectFromDocument(doc), nil
}

// ParseDocument unmarshals interchange XML without model conversion.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse interchange XML: %w", err)
	}
	return &doc, nil
}

// OptionsFromDocument recovers the serialization options a document was
// written with, so a re-serialization pass reproduces identical bytes.
func OptionsFromDocument(doc *Document) Options {
	return Options{
		SchemaRevision:   doc.SchemaRevision,
		SoftwareRevision: doc.SoftwareRevision,
		ExportDate:       doc.ExportDate,
	}
}

// ProjectFromDocument maps a parsed document onto the intermediate model.
// Rungs whose text still carries a placeholder reference are re-marked
// partial, so integrity scoring of a re-parsed project matches the
// original.
func ProjectFromDocument(doc *Document) *model.Project {
	ctrl := &model.Controller{
		Name:          doc.Controller.Name,
		ProcessorType: doc.Controller.ProcessorType,
		MajorRev:      doc.Controller.MajorRev,
		MinorRev:      doc.Controller.MinorRev,
	}
	if doc.Controller.Description != nil {
		ctrl.Description = doc.Controller.Description.Value
	}

	for _, elem := range doc.Controller.DataTypes.DataTypes {
		dt := &model.DataTypeDef{
			Name:   elem.Name,
			Family: elem.Family,
			Class:  elem.Class,
		}
		for _, m := range elem.Members.Members {
			dt.Members = append(dt.Members, model.Member{
				Name:      m.Name,
				DataType:  m.DataType,
				Dimension: m.Dimension,
				Radix:     m.Radix,
				Hidden:    m.Hidden,
			})
		}
		ctrl.DataTypes.Add(dt)
	}

	for _, elem := range doc.Controller.Modules.Modules {
		ctrl.Modules.Add(&model.Module{
			Name:          elem.Name,
			CatalogNumber: elem.CatalogNumber,
			Vendor:        elem.Vendor,
			ProductType:   elem.ProductType,
			ProductCode:   elem.ProductCode,
			Major:         elem.Major,
			Minor:         elem.Minor,
		})
	}

	for _, elem := range doc.Controller.AddOnInstructionDefinitions.Definitions {
		aoi := &model.AddOnInstruction{
			Name:     elem.Name,
			Revision: elem.Revision,
		}
		for _, p := range elem.Parameters.Parameters {
			aoi.Parameters = append(aoi.Parameters, model.Parameter{
				Name:     p.Name,
				DataType: p.DataType,
				Usage:    p.Usage,
				Required: p.Required,
			})
		}
		ctrl.AddOnInstructions.Add(aoi)
	}

	for _, elem := range doc.Controller.Tags.Tags {
		tag := &model.Tag{
			Name:           elem.Name,
			TagType:        elem.TagType,
			DataType:       elem.DataType,
			Radix:          elem.Radix,
			Constant:       elem.Constant,
			ExternalAccess: elem.ExternalAccess,
			Safety:         elem.Class == "Safety",
		}
		if elem.Description != nil {
			tag.Description = elem.Description.Value
		}
		ctrl.Tags.Add(tag)
	}

	for _, elem := range doc.Controller.Programs.Programs {
		prog := &model.Program{
			Name:            elem.Name,
			Class:           elem.Class,
			MainRoutineName: elem.MainRoutineName,
		}
		for _, relem := range elem.Routines.Routines {
			routine := &model.Routine{Name: relem.Name, Type: relem.Type}
			if relem.RLLContent != nil {
				for _, r := range relem.RLLContent.Rungs {
					mr := model.Rung{
						Number:  r.Number,
						Text:    r.Text.Value,
						Partial: rung.HasPlaceholder(r.Text.Value),
					}
					if r.Comment != nil {
						mr.Comment = r.Comment.Value
					}
					routine.Rungs = append(routine.Rungs, mr)
				}
			}
			prog.Routines.Add(routine)
		}
		ctrl.Programs.Add(prog)
	}

	for _, elem := range doc.Controller.Tasks.Tasks {
		task := &model.Task{
			Name:     elem.Name,
			Type:     elem.Type,
			Priority: elem.Priority,
			RateMs:   elem.Rate,
		}
		for _, sp := range elem.ScheduledPrograms.Programs {
			task.ScheduledPrograms = append(task.ScheduledPrograms, sp.Name)
		}
		ctrl.Tasks.Add(task)
	}

	return &model.Project{Controller: ctrl}
}

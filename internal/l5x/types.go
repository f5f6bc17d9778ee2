// Package l5x serializes the intermediate project model to the
// interchange XML dialect and re-parses that dialect back into a model.
//
// Output is deterministic for a given model: elements are emitted in a
// fixed canonical order (Controller, then DataTypes, Modules,
// AddOnInstructionDefinitions, Tags, Programs, Tasks), attributes follow
// the struct field order below, and ids are content-derived rather than
// random. Re-serializing an unchanged model reproduces byte-identical
// output.
package l5x

import "encoding/xml"

// CDATA wraps text content emitted as a CDATA section.
type CDATA struct {
	Value string `xml:",cdata"`
}

// Document is the interchange file root.
type Document struct {
	XMLName          xml.Name       `xml:"RSLogix5000Content"`
	SchemaRevision   string         `xml:"SchemaRevision,attr"`
	SoftwareRevision string         `xml:"SoftwareRevision,attr"`
	TargetName       string         `xml:"TargetName,attr"`
	TargetType       string         `xml:"TargetType,attr"`
	ContainsContext  string         `xml:"ContainsContext,attr"`
	ExportDate       string         `xml:"ExportDate,attr"`
	ExportOptions    string         `xml:"ExportOptions,attr"`
	Controller       ControllerElem `xml:"Controller"`
}

// ControllerElem carries the component sections in canonical order.
type ControllerElem struct {
	Name          string `xml:"Name,attr"`
	ProcessorType string `xml:"ProcessorType,attr"`
	MajorRev      int    `xml:"MajorRev,attr"`
	MinorRev      int    `xml:"MinorRev,attr"`
	UUID          string `xml:"UUID,attr"`

	Description *CDATA `xml:"Description"`

	DataTypes                   DataTypesElem `xml:"DataTypes"`
	Modules                     ModulesElem   `xml:"Modules"`
	AddOnInstructionDefinitions AOIDefsElem   `xml:"AddOnInstructionDefinitions"`
	Tags                        TagsElem      `xml:"Tags"`
	Programs                    ProgramsElem  `xml:"Programs"`
	Tasks                       TasksElem     `xml:"Tasks"`
}

type DataTypesElem struct {
	DataTypes []DataTypeElem `xml:"DataType"`
}

type DataTypeElem struct {
	Name    string      `xml:"Name,attr"`
	Family  string      `xml:"Family,attr"`
	Class   string      `xml:"Class,attr"`
	Members MembersElem `xml:"Members"`
}

type MembersElem struct {
	Members []MemberElem `xml:"Member"`
}

type MemberElem struct {
	Name      string `xml:"Name,attr"`
	DataType  string `xml:"DataType,attr"`
	Dimension int    `xml:"Dimension,attr"`
	Radix     string `xml:"Radix,attr"`
	Hidden    bool   `xml:"Hidden,attr"`
}

type ModulesElem struct {
	Modules []ModuleElem `xml:"Module"`
}

type ModuleElem struct {
	Name          string `xml:"Name,attr"`
	CatalogNumber string `xml:"CatalogNumber,attr"`
	Vendor        int    `xml:"Vendor,attr"`
	ProductType   int    `xml:"ProductType,attr"`
	ProductCode   int    `xml:"ProductCode,attr"`
	Major         int    `xml:"Major,attr"`
	Minor         int    `xml:"Minor,attr"`
}

type AOIDefsElem struct {
	Definitions []AOIDefElem `xml:"AddOnInstructionDefinition"`
}

type AOIDefElem struct {
	Name       string         `xml:"Name,attr"`
	Revision   string         `xml:"Revision,attr"`
	UUID       string         `xml:"UUID,attr"`
	Parameters ParametersElem `xml:"Parameters"`
}

type ParametersElem struct {
	Parameters []ParameterElem `xml:"Parameter"`
}

type ParameterElem struct {
	Name     string `xml:"Name,attr"`
	DataType string `xml:"DataType,attr"`
	Usage    string `xml:"Usage,attr"`
	Required bool   `xml:"Required,attr"`
}

type TagsElem struct {
	Tags []TagElem `xml:"Tag"`
}

type TagElem struct {
	Name           string `xml:"Name,attr"`
	TagType        string `xml:"TagType,attr"`
	DataType       string `xml:"DataType,attr"`
	Radix          string `xml:"Radix,attr"`
	Constant       bool   `xml:"Constant,attr"`
	ExternalAccess string `xml:"ExternalAccess,attr"`
	Class          string `xml:"Class,attr,omitempty"`
	Description    *CDATA `xml:"Description"`
}

type ProgramsElem struct {
	Programs []ProgramElem `xml:"Program"`
}

type ProgramElem struct {
	Name            string       `xml:"Name,attr"`
	Class           string       `xml:"Class,attr"`
	MainRoutineName string       `xml:"MainRoutineName,attr,omitempty"`
	Routines        RoutinesElem `xml:"Routines"`
}

type RoutinesElem struct {
	Routines []RoutineElem `xml:"Routine"`
}

type RoutineElem struct {
	Name       string          `xml:"Name,attr"`
	Type       string          `xml:"Type,attr"`
	RLLContent *RLLContentElem `xml:"RLLContent"`
}

type RLLContentElem struct {
	Rungs []RungElem `xml:"Rung"`
}

type RungElem struct {
	Number  uint32 `xml:"Number,attr"`
	Type    string `xml:"Type,attr"`
	Comment *CDATA `xml:"Comment"`
	Text    CDATA  `xml:"Text"`
}

type TasksElem struct {
	Tasks []TaskElem `xml:"Task"`
}

type TaskElem struct {
	Name              string                `xml:"Name,attr"`
	Type              string                `xml:"Type,attr"`
	Priority          int                   `xml:"Priority,attr"`
	Rate              int                   `xml:"Rate,attr"`
	ScheduledPrograms ScheduledProgramsElem `xml:"ScheduledPrograms"`
}

type ScheduledProgramsElem struct {
	Programs []ScheduledProgramElem `xml:"ScheduledProgram"`
}

type ScheduledProgramElem struct {
	Name string `xml:"Name,attr"`
}

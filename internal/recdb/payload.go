package recdb

import (
	"encoding/binary"
	"fmt"
)

// Type-specific payload codecs. The decoder stores payload bytes opaquely;
// these functions interpret them for the record kinds whose layout has
// been characterized. All fields are little-endian.

// ControllerInfo is the decoded Controller record payload.
type ControllerInfo struct {
	ProcessorType string
	MajorRev      int
	MinorRev      int
}

// ProgramInfo is the decoded Program record payload.
type ProgramInfo struct {
	MainRoutine string
	Safety      bool
}

// RoutineInfo is the decoded Routine record payload.
type RoutineInfo struct {
	Type string // RLL, ST, FBD, SFC
}

// TagInfo is the decoded Tag record payload.
type TagInfo struct {
	DataType       string
	Radix          string
	ExternalAccess string
	Constant       bool
	Safety         bool
}

// Member is one member of a user-defined data type.
type Member struct {
	Name      string
	DataType  string
	Dimension int
	Radix     string
	Hidden    bool
}

// DataTypeInfo is the decoded DataType record payload.
type DataTypeInfo struct {
	Members []Member
}

// ModuleInfo is the decoded Module record payload.
type ModuleInfo struct {
	CatalogNumber string
	Vendor        int
	ProductType   int
	ProductCode   int
	Major         int
	Minor         int
}

// Parameter is one parameter of an add-on instruction.
type Parameter struct {
	Name     string
	DataType string
	Usage    string // Input, Output, InOut
	Required bool
}

// AddOnInstructionInfo is the decoded AddOnInstruction record payload.
type AddOnInstructionInfo struct {
	Revision   string
	Parameters []Parameter
}

// TaskInfo is the decoded Task record payload.
type TaskInfo struct {
	Type              string // CONTINUOUS, PERIODIC, EVENT
	Priority          int
	RateMs            int
	ScheduledPrograms []string
}

// CommentInfo locates the rung a Comment record annotates. The comment
// text itself is the record's UTF-16 name field.
type CommentInfo struct {
	Program    string
	Routine    string
	RungNumber uint32
}

var radixNames = []string{"Decimal", "Binary", "Octal", "Hex", "Float", "ASCII"}

var externalAccessNames = []string{"Read/Write", "Read Only", "None"}

var routineTypeNames = []string{"RLL", "ST", "FBD", "SFC"}

var taskTypeNames = []string{"CONTINUOUS", "PERIODIC", "EVENT"}

func nameFromTable(table []string, code byte) string {
	if int(code) < len(table) {
		return table[code]
	}
	return table[0]
}

// cursor walks a payload with a sticky error, so codecs read field
// sequences without per-read error plumbing.
type cursor struct {
	b   []byte
	off int
	err error
}

func (c *cursor) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

func (c *cursor) u8() byte {
	if c.err != nil {
		return 0
	}
	if c.off+1 > len(c.b) {
		c.fail("truncated payload at offset %d: want u8", c.off)
		return 0
	}
	v := c.b[c.off]
	c.off++
	return v
}

func (c *cursor) u16() uint16 {
	if c.err != nil {
		return 0
	}
	if c.off+2 > len(c.b) {
		c.fail("truncated payload at offset %d: want u16", c.off)
		return 0
	}
	v := binary.LittleEndian.Uint16(c.b[c.off:])
	c.off += 2
	return v
}

func (c *cursor) u32() uint32 {
	if c.err != nil {
		return 0
	}
	if c.off+4 > len(c.b) {
		c.fail("truncated payload at offset %d: want u32", c.off)
		return 0
	}
	v := binary.LittleEndian.Uint32(c.b[c.off:])
	c.off += 4
	return v
}

func (c *cursor) pascal() string {
	if c.err != nil {
		return ""
	}
	n := int(c.u8())
	if c.err != nil {
		return ""
	}
	if c.off+n > len(c.b) {
		c.fail("truncated payload at offset %d: string length %d", c.off, n)
		return ""
	}
	s := string(c.b[c.off : c.off+n])
	c.off += n
	return s
}

// DecodeControllerPayload parses a Controller record payload.
func DecodeControllerPayload(p []byte) (ControllerInfo, error) {
	c := cursor{b: p}
	info := ControllerInfo{
		ProcessorType: c.pascal(),
		MajorRev:      int(c.u16()),
		MinorRev:      int(c.u16()),
	}
	return info, c.err
}

// DecodeProgramPayload parses a Program record payload.
func DecodeProgramPayload(p []byte) (ProgramInfo, error) {
	c := cursor{b: p}
	info := ProgramInfo{
		MainRoutine: c.pascal(),
		Safety:      c.u8()&0x01 != 0,
	}
	return info, c.err
}

// DecodeRoutinePayload parses a Routine record payload.
func DecodeRoutinePayload(p []byte) (RoutineInfo, error) {
	c := cursor{b: p}
	t := c.u8()
	if c.err != nil {
		return RoutineInfo{}, c.err
	}
	return RoutineInfo{Type: nameFromTable(routineTypeNames, t)}, nil
}

// DecodeTagPayload parses a Tag record payload.
func DecodeTagPayload(p []byte) (TagInfo, error) {
	c := cursor{b: p}
	dataType := c.pascal()
	radix := c.u8()
	external := c.u8()
	flags := c.u8()
	if c.err != nil {
		return TagInfo{}, c.err
	}
	return TagInfo{
		DataType:       dataType,
		Radix:          nameFromTable(radixNames, radix),
		ExternalAccess: nameFromTable(externalAccessNames, external),
		Constant:       flags&0x01 != 0,
		Safety:         flags&0x02 != 0,
	}, nil
}

// DecodeDataTypePayload parses a DataType record payload.
func DecodeDataTypePayload(p []byte) (DataTypeInfo, error) {
	c := cursor{b: p}
	count := int(c.u16())
	info := DataTypeInfo{}
	for i := 0; i < count && c.err == nil; i++ {
		m := Member{
			Name:      c.pascal(),
			DataType:  c.pascal(),
			Dimension: int(c.u32()),
			Radix:     nameFromTable(radixNames, c.u8()),
			Hidden:    c.u8() != 0,
		}
		if c.err == nil {
			info.Members = append(info.Members, m)
		}
	}
	return info, c.err
}

// DecodeModulePayload parses a Module record payload.
func DecodeModulePayload(p []byte) (ModuleInfo, error) {
	c := cursor{b: p}
	info := ModuleInfo{
		CatalogNumber: c.pascal(),
		Vendor:        int(c.u32()),
		ProductType:   int(c.u32()),
		ProductCode:   int(c.u32()),
		Major:         int(c.u16()),
		Minor:         int(c.u16()),
	}
	return info, c.err
}

// DecodeAddOnInstructionPayload parses an AddOnInstruction record payload.
func DecodeAddOnInstructionPayload(p []byte) (AddOnInstructionInfo, error) {
	c := cursor{b: p}
	info := AddOnInstructionInfo{Revision: c.pascal()}
	count := int(c.u16())
	for i := 0; i < count && c.err == nil; i++ {
		param := Parameter{
			Name:     c.pascal(),
			DataType: c.pascal(),
		}
		usage := c.u8()
		param.Required = c.u8() != 0
		switch usage {
		case 1:
			param.Usage = "Output"
		case 2:
			param.Usage = "InOut"
		default:
			param.Usage = "Input"
		}
		if c.err == nil {
			info.Parameters = append(info.Parameters, param)
		}
	}
	return info, c.err
}

// DecodeTaskPayload parses a Task record payload.
func DecodeTaskPayload(p []byte) (TaskInfo, error) {
	c := cursor{b: p}
	info := TaskInfo{
		Type:     nameFromTable(taskTypeNames, c.u8()),
		Priority: int(c.u32()),
		RateMs:   int(c.u32()),
	}
	count := int(c.u16())
	for i := 0; i < count && c.err == nil; i++ {
		name := c.pascal()
		if c.err == nil {
			info.ScheduledPrograms = append(info.ScheduledPrograms, name)
		}
	}
	return info, c.err
}

// DecodeCommentPayload parses a Comment record payload.
func DecodeCommentPayload(p []byte) (CommentInfo, error) {
	c := cursor{b: p}
	info := CommentInfo{
		RungNumber: c.u32(),
		Program:    c.pascal(),
		Routine:    c.pascal(),
	}
	return info, c.err
}

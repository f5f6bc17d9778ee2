// Package recdb decodes the record-oriented binary databases held inside a
// container's virtual files.
//
// Each record carries a fixed little-endian header followed by a name field
// whose encoding is schema-dependent rather than self-describing. The
// encoding is selected from a fixed table keyed by (virtual-file name,
// record type code). Trial-decoding is deliberately not performed: record
// types absent from the table are kept as opaque payload until the type has
// been characterized against a real sample.
package recdb

// Kind is the semantic classification of a record.
type Kind int

const (
	KindUnknown Kind = iota
	KindController
	KindProgram
	KindRoutine
	KindRung
	KindTag
	KindDataType
	KindModule
	KindAddOnInstruction
	KindTask
	KindComment
	KindMalformed
)

var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	KindController:       "Controller",
	KindProgram:          "Program",
	KindRoutine:          "Routine",
	KindRung:             "Rung",
	KindTag:              "Tag",
	KindDataType:         "DataType",
	KindModule:           "Module",
	KindAddOnInstruction: "AddOnInstruction",
	KindTask:             "Task",
	KindComment:          "Comment",
	KindMalformed:        "Malformed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// NameEncoding selects how a record's name field is stored.
type NameEncoding int

const (
	// EncodingNone: no name field, everything after the header is payload.
	EncodingNone NameEncoding = iota
	// EncodingPascal: 1-byte length prefix + that many ASCII bytes.
	EncodingPascal
	// EncodingUTF16: 2-byte little-endian count of UTF-16LE code units,
	// followed by that many 2-byte units.
	EncodingUTF16
)

// RecordSpec describes one record type within a virtual file's schema.
type RecordSpec struct {
	Kind Kind
	Name NameEncoding
}

// Schema maps on-disk record type codes to their decoded meaning.
type Schema map[uint32]RecordSpec

// On-disk type codes shared by the component databases. Exported so test
// fixtures can frame synthetic records.
const (
	TypeController       uint32 = 0x01
	TypeProgram          uint32 = 0x02
	TypeRoutine          uint32 = 0x03
	TypeRung             uint32 = 0x04
	TypeTag              uint32 = 0x05
	TypeDataType         uint32 = 0x06
	TypeModule           uint32 = 0x07
	TypeAddOnInstruction uint32 = 0x08
	TypeTask             uint32 = 0x09
	TypeComment          uint32 = 0x0A
)

// schemas is the fixed, versionable encoding table. Entries are added as
// record types are verified against real samples, never inferred at
// runtime.
var schemas = map[string]Schema{
	"Comps": {
		TypeController:       {KindController, EncodingPascal},
		TypeProgram:          {KindProgram, EncodingPascal},
		TypeRoutine:          {KindRoutine, EncodingPascal},
		TypeRung:             {KindRung, EncodingPascal},
		TypeTag:              {KindTag, EncodingPascal},
		TypeDataType:         {KindDataType, EncodingPascal},
		TypeModule:           {KindModule, EncodingPascal},
		TypeAddOnInstruction: {KindAddOnInstruction, EncodingPascal},
		TypeTask:             {KindTask, EncodingPascal},
	},
	// SbRegion rungs name their owning routine as "Program\Routine";
	// the rung instruction text is the payload.
	"SbRegion": {
		TypeRung: {KindRung, EncodingPascal},
	},
	// Comments records carry the comment text itself as a UTF-16 name;
	// the payload locates the commented rung.
	"Comments": {
		TypeComment: {KindComment, EncodingUTF16},
	},
}

// SchemaFor returns the schema for a virtual file name, if one is known.
func SchemaFor(fileName string) (Schema, bool) {
	s, ok := schemas[fileName]
	return s, ok
}

// Decodable reports whether a virtual file has a known record schema.
func Decodable(fileName string) bool {
	_, ok := schemas[fileName]
	return ok
}

// Package testutil builds synthetic containers and record databases for
// tests. The builders mirror the on-disk layout the decoders expect, so
// fixtures stay byte-accurate without hand-rolled hex dumps.
package testutil

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"unicode/utf16"
)

// PascalRecord frames one record whose name field uses the 1-byte length
// prefix encoding.
func PascalRecord(objectID, parentID, typeCode, seq uint32, name string, payload []byte) []byte {
	body := append(PascalString(name), payload...)
	return frameRecord(objectID, parentID, typeCode, seq, body)
}

// UTF16Record frames one record whose name field uses the 2-byte
// code-unit count UTF-16LE encoding.
func UTF16Record(objectID, parentID, typeCode, seq uint32, name string, payload []byte) []byte {
	units := utf16.Encode([]rune(name))
	body := make([]byte, 2, 2+len(units)*2+len(payload))
	binary.LittleEndian.PutUint16(body, uint16(len(units)))
	for _, u := range units {
		body = binary.LittleEndian.AppendUint16(body, u)
	}
	body = append(body, payload...)
	return frameRecord(objectID, parentID, typeCode, seq, body)
}

// RawRecord frames a record with an already-encoded body. Used to build
// deliberately malformed fixtures.
func RawRecord(objectID, parentID, typeCode, seq uint32, body []byte) []byte {
	return frameRecord(objectID, parentID, typeCode, seq, body)
}

func frameRecord(objectID, parentID, typeCode, seq uint32, body []byte) []byte {
	rec := make([]byte, 20, 20+len(body))
	binary.LittleEndian.PutUint32(rec[0:], uint32(20+len(body)))
	binary.LittleEndian.PutUint32(rec[4:], objectID)
	binary.LittleEndian.PutUint32(rec[8:], parentID)
	binary.LittleEndian.PutUint32(rec[12:], typeCode)
	binary.LittleEndian.PutUint32(rec[16:], seq)
	return append(rec, body...)
}

// PascalString encodes a 1-byte length prefixed ASCII string.
func PascalString(s string) []byte {
	out := make([]byte, 0, 1+len(s))
	out = append(out, byte(len(s)))
	return append(out, s...)
}

// GzipSegment compresses payload as one gzip member, the form a container
// segment takes on disk.
func GzipSegment(payload []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Container concatenates a preamble and pre-compressed segments into a
// full container image.
func Container(preamble []byte, segments ...[]byte) []byte {
	out := append([]byte{}, preamble...)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return out
}

// ControllerPayload encodes a Controller record payload.
func ControllerPayload(processorType string, major, minor uint16) []byte {
	out := PascalString(processorType)
	out = binary.LittleEndian.AppendUint16(out, major)
	return binary.LittleEndian.AppendUint16(out, minor)
}

// ProgramPayload encodes a Program record payload.
func ProgramPayload(mainRoutine string, safety bool) []byte {
	out := PascalString(mainRoutine)
	var flags byte
	if safety {
		flags |= 0x01
	}
	return append(out, flags)
}

// RoutinePayload encodes a Routine record payload. Type codes: 0 RLL,
// 1 ST, 2 FBD, 3 SFC.
func RoutinePayload(routineType byte) []byte {
	return []byte{routineType}
}

// TagPayload encodes a Tag record payload.
func TagPayload(dataType string, radix, externalAccess byte, constant, safety bool) []byte {
	out := PascalString(dataType)
	out = append(out, radix, externalAccess)
	var flags byte
	if constant {
		flags |= 0x01
	}
	if safety {
		flags |= 0x02
	}
	return append(out, flags)
}

// DataTypeMember is one member for DataTypePayload.
type DataTypeMember struct {
	Name      string
	DataType  string
	Dimension uint32
	Radix     byte
	Hidden    bool
}

// DataTypePayload encodes a DataType record payload.
func DataTypePayload(members ...DataTypeMember) []byte {
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(members)))
	for _, m := range members {
		out = append(out, PascalString(m.Name)...)
		out = append(out, PascalString(m.DataType)...)
		out = binary.LittleEndian.AppendUint32(out, m.Dimension)
		out = append(out, m.Radix)
		if m.Hidden {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

// ModulePayload encodes a Module record payload.
func ModulePayload(catalog string, vendor, productType, productCode uint32, major, minor uint16) []byte {
	out := PascalString(catalog)
	out = binary.LittleEndian.AppendUint32(out, vendor)
	out = binary.LittleEndian.AppendUint32(out, productType)
	out = binary.LittleEndian.AppendUint32(out, productCode)
	out = binary.LittleEndian.AppendUint16(out, major)
	return binary.LittleEndian.AppendUint16(out, minor)
}

// AOIParameter is one parameter for AOIPayload.
type AOIParameter struct {
	Name     string
	DataType string
	Usage    byte // 0 Input, 1 Output, 2 InOut
	Required bool
}

// AOIPayload encodes an AddOnInstruction record payload.
func AOIPayload(revision string, params ...AOIParameter) []byte {
	out := PascalString(revision)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(params)))
	for _, p := range params {
		out = append(out, PascalString(p.Name)...)
		out = append(out, PascalString(p.DataType)...)
		out = append(out, p.Usage)
		if p.Required {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

// TaskPayload encodes a Task record payload. Type codes: 0 CONTINUOUS,
// 1 PERIODIC, 2 EVENT.
func TaskPayload(taskType byte, priority, rateMs uint32, programs ...string) []byte {
	out := []byte{taskType}
	out = binary.LittleEndian.AppendUint32(out, priority)
	out = binary.LittleEndian.AppendUint32(out, rateMs)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(programs)))
	for _, p := range programs {
		out = append(out, PascalString(p)...)
	}
	return out
}

// CommentPayload encodes a Comment record payload locating the annotated
// rung.
func CommentPayload(rungNumber uint32, program, routine string) []byte {
	out := binary.LittleEndian.AppendUint32(nil, rungNumber)
	out = append(out, PascalString(program)...)
	return append(out, PascalString(routine)...)
}

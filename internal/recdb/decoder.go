package recdb

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"acdex/internal/container"
)

// Record is one decoded database entry. ObjectID is unique per virtual
// file; ParentID 0 marks a root. Payload is the raw bytes after the name
// field, kept opaque for later type-specific decoding.
type Record struct {
	ObjectID uint32
	ParentID uint32
	TypeCode uint32
	Seq      uint32
	Kind     Kind
	Name     string
	Payload  []byte
	Offset   int64 // byte offset within the virtual file
}

// Malformed describes one quarantined record.
type Malformed struct {
	File   string `json:"file"`
	Offset int64  `json:"offset"`
	Reason string `json:"reason"`
}

// Result is the outcome of decoding one virtual file. Decoding is
// best-effort: malformed records are quarantined and counted, never
// silently dropped.
type Result struct {
	File            string
	Records         []Record
	Malformed       []Malformed
	ExcessMalformed bool
}

// Record header: record_length, object_id, parent_id, record_type,
// sequence_number, all little-endian u32. record_length covers the header.
const headerSize = 20

// maxRecordLen bounds the declared record length during header
// plausibility checks. Real records are far smaller; anything beyond this
// is framing corruption.
const maxRecordLen = 16 << 20

// DefaultMalformedWarnFraction is the malformed-record fraction above
// which a decode escalates to a report-level warning.
const DefaultMalformedWarnFraction = 0.05

var utf16Dec = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Decode parses every record in the virtual file. warnFraction <= 0 uses
// DefaultMalformedWarnFraction. The error return is reserved for files
// with no schema; decode failures inside the file are quarantined.
func Decode(vf container.VirtualFile, warnFraction float64) (*Result, error) {
	schema, ok := SchemaFor(vf.Name)
	if !ok {
		return nil, fmt.Errorf("no record schema for virtual file %q", vf.Name)
	}
	if warnFraction <= 0 {
		warnFraction = DefaultMalformedWarnFraction
	}

	res := &Result{File: vf.Name}
	data := vf.Bytes
	pos := int64(0)

	for pos+headerSize <= int64(len(data)) {
		if !plausibleHeader(data, pos) {
			res.quarantine(pos, "implausible record header")
			next := resync(data, pos+1)
			if next < 0 {
				break
			}
			pos = next
			continue
		}

		length := int64(binary.LittleEndian.Uint32(data[pos:]))
		rec, err := decodeRecord(data[pos:pos+length], pos, schema)
		if err != nil {
			res.quarantine(pos, err.Error())
			pos += length
			continue
		}
		res.Records = append(res.Records, rec)
		pos += length
	}

	total := len(res.Records)
	if total > 0 {
		fraction := float64(len(res.Malformed)) / float64(total)
		res.ExcessMalformed = fraction > warnFraction
	}
	return res, nil
}

// quarantine appends a Malformed marker record and its report entry.
func (r *Result) quarantine(offset int64, reason string) {
	r.Records = append(r.Records, Record{Kind: KindMalformed, Offset: offset})
	r.Malformed = append(r.Malformed, Malformed{File: r.File, Offset: offset, Reason: reason})
}

// plausibleHeader reports whether pos looks like the start of a record:
// a sane declared length that fits the buffer and a nonzero object id.
func plausibleHeader(data []byte, pos int64) bool {
	if pos+headerSize > int64(len(data)) {
		return false
	}
	length := int64(binary.LittleEndian.Uint32(data[pos:]))
	if length < headerSize || length > maxRecordLen || pos+length > int64(len(data)) {
		return false
	}
	objectID := binary.LittleEndian.Uint32(data[pos+4:])
	return objectID != 0
}

// resync scans forward for the next plausible record header boundary.
func resync(data []byte, from int64) int64 {
	for pos := from; pos+headerSize <= int64(len(data)); pos++ {
		if plausibleHeader(data, pos) {
			return pos
		}
	}
	return -1
}

// decodeRecord parses one record from its framed bytes. rec includes the
// full header.
func decodeRecord(rec []byte, offset int64, schema Schema) (Record, error) {
	r := Record{
		ObjectID: binary.LittleEndian.Uint32(rec[4:]),
		ParentID: binary.LittleEndian.Uint32(rec[8:]),
		TypeCode: binary.LittleEndian.Uint32(rec[12:]),
		Seq:      binary.LittleEndian.Uint32(rec[16:]),
		Offset:   offset,
	}

	body := rec[headerSize:]
	spec, known := schema[r.TypeCode]
	if !known {
		// Uncharacterized record type: keep the whole body opaque.
		r.Kind = KindUnknown
		r.Payload = body
		return r, nil
	}
	r.Kind = spec.Kind

	name, rest, err := decodeName(body, spec.Name)
	if err != nil {
		return Record{}, fmt.Errorf("record %d (%s) at 0x%X: %w", r.ObjectID, spec.Kind, offset, err)
	}
	r.Name = name
	r.Payload = rest
	return r, nil
}

// decodeName consumes the name field from body according to the schema
// encoding and returns the remaining payload bytes.
func decodeName(body []byte, enc NameEncoding) (string, []byte, error) {
	switch enc {
	case EncodingNone:
		return "", body, nil

	case EncodingPascal:
		if len(body) < 1 {
			return "", nil, fmt.Errorf("truncated name length prefix")
		}
		n := int(body[0])
		if 1+n > len(body) {
			return "", nil, fmt.Errorf("name length %d exceeds record body (%d bytes)", n, len(body)-1)
		}
		raw := body[1 : 1+n]
		for _, b := range raw {
			if b < 0x20 || b > 0x7E {
				return "", nil, fmt.Errorf("non-ASCII byte 0x%02X in name field", b)
			}
		}
		return string(raw), body[1+n:], nil

	case EncodingUTF16:
		if len(body) < 2 {
			return "", nil, fmt.Errorf("truncated name length prefix")
		}
		units := int(binary.LittleEndian.Uint16(body))
		end := 2 + units*2
		if end > len(body) {
			return "", nil, fmt.Errorf("name length %d code units exceeds record body (%d bytes)", units, len(body)-2)
		}
		decoded, err := utf16Dec.NewDecoder().Bytes(body[2:end])
		if err != nil {
			return "", nil, fmt.Errorf("decode UTF-16 name: %w", err)
		}
		// NFC so the same name always compares and hashes identically.
		return norm.NFC.String(string(decoded)), body[end:], nil

	default:
		return "", nil, fmt.Errorf("unknown name encoding %d", enc)
	}
}

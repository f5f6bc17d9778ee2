// Package container splits a proprietary project container into its text
// preamble and a sequence of named, decompressed virtual files.
//
// The container stores no per-segment length fields. Segment boundaries are
// discovered by decompression: a streaming inflate over the bytes following
// a gzip magic reports exactly how many compressed bytes it consumed when it
// reaches the deflate end-of-stream marker, and that count is the
// authoritative segment length. A segment is accepted only if the 8-byte
// gzip trailer (CRC32 + size mod 2^32) matches the decompressed content;
// otherwise the reader advances one byte and resumes the magic search.
package container

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// VirtualFile is one named internal database extracted from a container
// segment. Created once by the reader, immutable thereafter.
type VirtualFile struct {
	Name  string
	Bytes []byte
}

// SkippedCandidate records a gzip magic that did not yield a valid segment.
// Surfaced in the conversion report so fidelity loss stays attributable.
type SkippedCandidate struct {
	Offset int64  `json:"offset"`
	Reason string `json:"reason"`
}

// Result is the output of one container read.
type Result struct {
	Preamble string
	Files    []VirtualFile
	Skipped  []SkippedCandidate
}

// DefaultSegmentBudget caps the decompressed size of a single segment.
const DefaultSegmentBudget = 256 << 20

var gzipMagic = []byte{0x1F, 0x8B}

// preambleSentinel marks the end of the text preamble: a UTF-16LE blank
// line (CR LF CR LF). The preamble carries no length field.
var preambleSentinel = []byte{0x0D, 0x00, 0x0A, 0x00, 0x0D, 0x00, 0x0A, 0x00}

// Reader extracts virtual files from raw container bytes.
type Reader struct {
	// SegmentBudget is the per-segment decompressed size ceiling.
	// Zero means DefaultSegmentBudget.
	SegmentBudget int64

	// ManifestOverrides remaps segment index to logical name on top of
	// the built-in manifest table.
	ManifestOverrides map[int]string
}

// Read splits data into the preamble and the accepted segments.
// Returns a *FormatError if no segment can be located and validated.
func (r *Reader) Read(data []byte) (*Result, error) {
	budget := r.SegmentBudget
	if budget <= 0 {
		budget = DefaultSegmentBudget
	}

	firstMagic := findMagic(data, 0)
	if firstMagic < 0 {
		return nil, &FormatError{Offset: int64(len(data)), Reason: "no gzip segment magic found"}
	}

	preamble := decodePreamble(data[:firstMagic])

	res := &Result{Preamble: preamble}
	pos := firstMagic
	for pos >= 0 {
		payload, consumed, err := readSegment(data, int64(pos), budget)
		if err != nil {
			if IsBudgetError(err) {
				return nil, err
			}
			res.Skipped = append(res.Skipped, SkippedCandidate{
				Offset: int64(pos),
				Reason: err.Error(),
			})
			pos = findMagic(data, pos+1)
			continue
		}
		res.Files = append(res.Files, VirtualFile{
			Name:  SegmentName(len(res.Files), r.ManifestOverrides),
			Bytes: payload,
		})
		pos = findMagic(data, pos+int(consumed))
	}

	if len(res.Files) == 0 {
		return nil, &FormatError{
			Offset: int64(firstMagic),
			Reason: fmt.Sprintf("no segment validated (%d candidates rejected)", len(res.Skipped)),
		}
	}
	return res, nil
}

// findMagic returns the offset of the next plausible gzip member header at
// or after from, or -1. A plausible header is the 2-byte magic followed by
// the deflate compression method byte.
func findMagic(data []byte, from int) int {
	for from < len(data) {
		rel := bytes.Index(data[from:], gzipMagic)
		if rel < 0 {
			return -1
		}
		off := from + rel
		if off+2 < len(data) && data[off+2] == 0x08 {
			return off
		}
		from = off + 1
	}
	return -1
}

// decodePreamble interprets the bytes before the first segment as text.
// When the UTF-16LE blank-line sentinel is present the preamble is UTF-16LE;
// otherwise it is treated as single-byte text.
func decodePreamble(raw []byte) string {
	if end := bytes.Index(raw, preambleSentinel); end >= 0 {
		raw = raw[:end]
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		if out, err := dec.Bytes(raw); err == nil {
			return string(out)
		}
	}
	return string(raw)
}

// readSegment inflates one gzip member starting at off and verifies its
// trailer. Returns the decompressed payload and the total number of
// container bytes the member occupied (header + deflate stream + trailer).
func readSegment(data []byte, off, budget int64) ([]byte, int64, error) {
	headerLen, err := gzipHeaderLen(data[off:])
	if err != nil {
		return nil, 0, fmt.Errorf("segment at 0x%X: %w", off, err)
	}

	body := data[off+headerLen:]
	br := bytes.NewReader(body)
	fr := flate.NewReader(br)
	defer fr.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(fr, budget+1))
	if err != nil {
		return nil, 0, fmt.Errorf("segment at 0x%X: inflate: %w", off, err)
	}
	if n > budget {
		return nil, 0, &BudgetError{Offset: off, Limit: budget}
	}

	// bytes.Reader is an io.ByteReader, so the flate reader consumed
	// exactly the deflate stream with no readahead. What remains in br is
	// everything after the end-of-stream marker.
	compressed := int64(len(body)) - int64(br.Len())

	trailerOff := off + headerLen + compressed
	if trailerOff+8 > int64(len(data)) {
		return nil, 0, fmt.Errorf("segment at 0x%X: truncated trailer", off)
	}
	trailer := data[trailerOff : trailerOff+8]
	wantCRC := binary.LittleEndian.Uint32(trailer[0:4])
	wantSize := binary.LittleEndian.Uint32(trailer[4:8])
	payload := buf.Bytes()
	gotCRC := crc32.ChecksumIEEE(payload)
	gotSize := uint32(len(payload))
	if gotCRC != wantCRC || gotSize != wantSize {
		return nil, 0, &TrailerMismatchError{
			Offset:   off,
			WantCRC:  wantCRC,
			GotCRC:   gotCRC,
			WantSize: wantSize,
			GotSize:  gotSize,
		}
	}

	return payload, headerLen + compressed + 8, nil
}

// gzip member header flag bits.
const (
	flagHCRC    = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
)

// gzipHeaderLen parses a gzip member header and returns its length,
// including any optional FEXTRA/FNAME/FCOMMENT/FHCRC fields.
func gzipHeaderLen(b []byte) (int64, error) {
	if len(b) < 10 {
		return 0, fmt.Errorf("truncated gzip header")
	}
	if b[0] != gzipMagic[0] || b[1] != gzipMagic[1] {
		return 0, fmt.Errorf("bad gzip magic")
	}
	if b[2] != 0x08 {
		return 0, fmt.Errorf("unsupported compression method 0x%02X", b[2])
	}
	flg := b[3]
	pos := int64(10)
	if flg&flagExtra != 0 {
		if int64(len(b)) < pos+2 {
			return 0, fmt.Errorf("truncated FEXTRA length")
		}
		xlen := int64(binary.LittleEndian.Uint16(b[pos : pos+2]))
		pos += 2 + xlen
	}
	if flg&flagName != 0 {
		if pos >= int64(len(b)) {
			return 0, fmt.Errorf("truncated FNAME")
		}
		end := bytes.IndexByte(b[pos:], 0)
		if end < 0 {
			return 0, fmt.Errorf("unterminated FNAME")
		}
		pos += int64(end) + 1
	}
	if flg&flagComment != 0 {
		if pos >= int64(len(b)) {
			return 0, fmt.Errorf("truncated FCOMMENT")
		}
		end := bytes.IndexByte(b[pos:], 0)
		if end < 0 {
			return 0, fmt.Errorf("unterminated FCOMMENT")
		}
		pos += int64(end) + 1
	}
	if flg&flagHCRC != 0 {
		pos += 2
	}
	if pos > int64(len(b)) {
		return 0, fmt.Errorf("truncated gzip header fields")
	}
	return pos, nil
}

package container

import (
	"errors"
	"fmt"
)

// FormatError indicates the container is structurally unreadable: no
// segment could be located after the preamble, or the first candidate
// segment never validated. Nothing downstream can proceed.
type FormatError struct {
	Offset int64  // byte offset where scanning gave up
	Reason string // human-readable description
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("container format error at offset 0x%X: %s", e.Offset, e.Reason)
}

// TrailerMismatchError indicates a gzip candidate inflated but its
// CRC32/ISIZE trailer did not match the decompressed content. Recoverable:
// the reader advances one byte and keeps scanning.
type TrailerMismatchError struct {
	Offset   int64 // offset of the gzip magic that failed
	WantCRC  uint32
	GotCRC   uint32
	WantSize uint32
	GotSize  uint32
}

func (e *TrailerMismatchError) Error() string {
	return fmt.Sprintf("segment trailer mismatch at offset 0x%X: crc %08x != %08x, size %d != %d",
		e.Offset, e.GotCRC, e.WantCRC, e.GotSize, e.WantSize)
}

// BudgetError indicates a segment's decompressed size exceeded the
// configured per-segment memory ceiling. Fatal: continuing would mean
// unbounded growth.
type BudgetError struct {
	Offset int64
	Limit  int64
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("segment at offset 0x%X exceeds decompressed size budget of %d bytes", e.Offset, e.Limit)
}

// IsFormatError reports whether err is a fatal container format error.
// Uses errors.As to handle wrapped errors.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsBudgetError reports whether err is a decompression budget violation.
func IsBudgetError(err error) bool {
	var be *BudgetError
	return errors.As(err, &be)
}

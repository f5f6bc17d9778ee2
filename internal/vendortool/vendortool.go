// Package vendortool models the write-back path into the original vendor
// environment as an external collaborator. Regenerating a loadable
// container requires the licensed, host-locked automation interface, so
// the core pipeline never depends on this package for its own correctness
// or tests; it exists so orchestration layers have a seam to plug a real
// implementation into.
package vendortool

import (
	"context"
	"errors"
	"fmt"

	"acdex/internal/model"
)

// ErrUnavailable is returned when no vendor tooling is installed on the
// host.
var ErrUnavailable = errors.New("vendor tool not available on this host")

// Error wraps a failure reported by the vendor tooling.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("vendor tool %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Writer regenerates a vendor-native project file from an intermediate
// model.
type Writer interface {
	WriteViaVendorTool(ctx context.Context, project *model.Project, path string) error
}

// Unavailable is the default Writer on hosts without vendor tooling.
type Unavailable struct{}

func (Unavailable) WriteViaVendorTool(ctx context.Context, project *model.Project, path string) error {
	return &Error{Op: "write", Err: ErrUnavailable}
}

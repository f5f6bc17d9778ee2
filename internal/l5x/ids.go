package l5x

import "github.com/google/uuid"

// The source format stores random UUIDs on several components. Re-emitting
// those would make output non-reproducible, so serialization replaces them
// with content-derived ids: a name-based UUID over the component kind and
// name. Re-serializing an unchanged model reproduces the same ids.
var stableNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("acdex/stable-id/v1"))

// StableID returns the content-derived id for a component. The null byte
// separates kind from name so the boundary is unambiguous.
func StableID(kind, name string) string {
	payload := make([]byte, 0, len(kind)+1+len(name))
	payload = append(payload, kind...)
	payload = append(payload, 0x00)
	payload = append(payload, name...)
	return uuid.NewSHA1(stableNamespace, payload).String()
}

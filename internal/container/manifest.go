package container

import "fmt"

// The container does not self-describe segment names in any uniform way.
// Logical names are assigned positionally from a fixed, versionable table;
// segments beyond the table get a synthetic name.
//
// The order matches the segment layout observed across sampled project
// files. Widen the table only once a new segment has been characterized
// against a real sample.
var defaultManifest = []string{
	"Comps",
	"SbRegion",
	"Comments",
	"TagInfo",
	"QuickInfo",
	"XRefs",
	"Nameless",
}

// SegmentName returns the logical name for the segment at the given index,
// consulting the override table first, then the built-in manifest.
func SegmentName(index int, overrides map[int]string) string {
	if name, ok := overrides[index]; ok {
		return name
	}
	if index >= 0 && index < len(defaultManifest) {
		return defaultManifest[index]
	}
	return fmt.Sprintf("Segment%03d", index)
}

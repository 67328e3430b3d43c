package pmap

import (
	"path/filepath"
	"strings"

	"github.com/kribakarans/pmap/procmaps"
)

// UnknownProcessName is reported when no region allows inferring the
// process name.
const UnknownProcessName = "Unknown"

// ProcessMetadata describes the process a maps snapshot belongs to.
type ProcessMetadata struct {
	// ProcessName is inferred from the first executable file-backed
	// region, or "Unknown".
	ProcessName string `json:"processName"`
	// PID of the process, 0 when analyzing a captured file. It is
	// supplied by the caller that read /proc, never inferred from the
	// snapshot text.
	PID int `json:"pid,omitempty"`
	// RegionCount is the number of mapped regions.
	RegionCount int `json:"regionCount"`
	// TotalSize is the summed size of all regions in bytes.
	TotalSize uint64 `json:"totalSize"`
	// LowAddress is the lowest mapped address.
	LowAddress uint64 `json:"lowAddress"`
	// HighAddress is the first address past the highest region.
	HighAddress uint64 `json:"highAddress"`
}

// ExtractMetadata derives the process metadata from the address space.
// The process name is the file name of the first code region backed by
// a real file, mirroring how the main binary's text mapping leads the
// maps output.
func ExtractMetadata(space *procmaps.AddressSpace, pid int) *ProcessMetadata {
	meta := &ProcessMetadata{
		ProcessName: UnknownProcessName,
		PID:         pid,
		RegionCount: space.Len(),
		TotalSize:   space.TotalSize(),
		LowAddress:  space.LowAddress(),
		HighAddress: space.HighAddress(),
	}

	for _, region := range space.Regions() {
		if region.Class != procmaps.ClassCode || !region.IsFileBacked() {
			continue
		}
		if strings.HasPrefix(region.Pathname, "[") {
			continue
		}
		meta.ProcessName = filepath.Base(region.Pathname)
		break
	}

	return meta
}

// MainBinaryPath returns the pathname of the region the process name
// was inferred from, or empty when unknown. Used by renderers to tell
// the main binary apart from shared libraries.
func MainBinaryPath(space *procmaps.AddressSpace, meta *ProcessMetadata) string {
	if meta.ProcessName == UnknownProcessName {
		return ""
	}
	for _, region := range space.Regions() {
		if region.IsFileBacked() && filepath.Base(region.Pathname) == meta.ProcessName {
			return region.Pathname
		}
	}
	return ""
}

package pmap

import (
	u "github.com/rjNemo/underscore"

	"github.com/kribakarans/pmap/procmaps"
)

// SecurityFinding is an advisory about one suspicious region. The only
// rule in effect flags regions that are both writable and executable,
// a potential code injection surface.
type SecurityFinding struct {
	// Region is the offending region.
	Region *procmaps.Region `json:"region"`
	// RegionIndex is the index of Region in the address space.
	RegionIndex int `json:"regionIndex"`
	// Description is a short human readable summary.
	Description string `json:"description"`
}

// AuditSecurity scans the address space for writable and executable
// regions, regardless of sharing or backing. An empty list means no
// findings.
func AuditSecurity(space *procmaps.AddressSpace) []*SecurityFinding {
	findings := make([]*SecurityFinding, 0)
	for i, region := range space.Regions() {
		if region.IsWritable() && region.IsExecutable() {
			findings = append(findings, &SecurityFinding{
				Region:      region,
				RegionIndex: i,
				Description: "writable and executable region",
			})
		}
	}
	return findings
}

// HasWritableExecutable reports whether any finding exists for the
// given space without materializing descriptions.
func HasWritableExecutable(space *procmaps.AddressSpace) bool {
	writableExecutable := u.Filter(space.Regions(), func(r *procmaps.Region) bool {
		return r.IsWritable() && r.IsExecutable()
	})
	return len(writableExecutable) > 0
}

// Package pmap analyzes Linux process virtual memory layouts as
// exposed by /proc/<pid>/maps, either captured to a file or read live.
// On top of the parsed address space it resolves crash-time register
// values, aggregates segment statistics, and audits for dangerous
// permission combinations. Rendering lives in the output package, the
// command line front-end in the app package.
package pmap

import (
	"time"

	"github.com/kribakarans/pmap/procmaps"
)

// ReportData bundles everything a renderer needs into one immutable
// value. It is fully computed before being handed out, renderers only
// read from it.
type ReportData struct {
	Space      *procmaps.AddressSpace `json:"regions"`
	Metadata   *ProcessMetadata       `json:"metadata"`
	Statistics *Statistics            `json:"statistics"`
	Groups     []*BinaryGroup         `json:"groups"`
	// SecurityFindings is empty when the audit found nothing.
	SecurityFindings []*SecurityFinding `json:"securityFindings"`
	// CrashResolutions is nil when no register was provided, ordered
	// PC, LR, SP, FP otherwise.
	CrashResolutions []*CrashResolution `json:"crashResolutions,omitempty"`
	// Backtrace is nil when no backtrace addresses were provided.
	Backtrace []*BacktraceFrame `json:"backtrace,omitempty"`
	// GeneratedAt is the assembly timestamp shown in report headers.
	GeneratedAt time.Time `json:"generatedAt"`
}

// HasCrashContext returns true if register resolutions are present.
func (d *ReportData) HasCrashContext() bool {
	return len(d.CrashResolutions) > 0
}

// Assemble runs every analysis over the address space and packages the
// results. The pid is recorded as-is, pass 0 when analyzing a captured
// file. ctx may be nil when no crash context is available.
func Assemble(space *procmaps.AddressSpace, pid int, ctx *CrashContext) *ReportData {
	data := &ReportData{
		Space:            space,
		Metadata:         ExtractMetadata(space, pid),
		Statistics:       ComputeStatistics(space),
		Groups:           GroupByBinary(space),
		SecurityFindings: AuditSecurity(space),
		GeneratedAt:      time.Now(),
	}
	if ctx != nil {
		data.CrashResolutions = ResolveCrash(space, ctx)
		data.Backtrace = ResolveBacktrace(space, ctx.Backtrace)
	}
	return data
}

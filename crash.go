package pmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/targodan/go-errors"

	"github.com/kribakarans/pmap/procmaps"
)

// RegisterRole identifies which crash-time CPU register an address
// came from.
type RegisterRole int

const (
	// RolePC is the program counter.
	RolePC RegisterRole = iota
	// RoleLR is the link register.
	RoleLR
	// RoleSP is the stack pointer.
	RoleSP
	// RoleFP is the frame pointer.
	RoleFP
)

// String returns the short register name, e.g. "PC".
func (r RegisterRole) String() string {
	switch r {
	case RolePC:
		return "PC"
	case RoleLR:
		return "LR"
	case RoleSP:
		return "SP"
	case RoleFP:
		return "FP"
	}
	return "??"
}

// Description returns the long register name, e.g. "Program Counter".
func (r RegisterRole) Description() string {
	switch r {
	case RolePC:
		return "Program Counter"
	case RoleLR:
		return "Link Register"
	case RoleSP:
		return "Stack Pointer"
	case RoleFP:
		return "Frame Pointer"
	}
	return "Unknown Register"
}

// MarshalJSON implements json.Marshaler.
func (r RegisterRole) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// CrashContext holds the crash-time register values handed in by the
// caller. A nil field means the register was not provided, which is
// distinct from a register provided as zero.
type CrashContext struct {
	PC *uint64 `json:"pc,omitempty"`
	LR *uint64 `json:"lr,omitempty"`
	SP *uint64 `json:"sp,omitempty"`
	FP *uint64 `json:"fp,omitempty"`
	// Backtrace holds raw return addresses to resolve, in input order.
	Backtrace []uint64 `json:"backtrace,omitempty"`
}

// HasRegisters returns true if at least one register is provided.
func (c *CrashContext) HasRegisters() bool {
	return c != nil && (c.PC != nil || c.LR != nil || c.SP != nil || c.FP != nil)
}

// IsEmpty returns true if neither registers nor backtrace addresses
// are provided.
func (c *CrashContext) IsEmpty() bool {
	return !c.HasRegisters() && (c == nil || len(c.Backtrace) == 0)
}

// ParseRegisterValue parses a register address given on the command
// line. Hex with or without "0x" prefix, case-insensitive, leading
// zeros permitted.
func ParseRegisterValue(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if trimmed == "" {
		return 0, errors.Newf("%q is not a hex address", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, errors.Newf("%q is not a 64-bit hex address", s)
	}
	return v, nil
}

// Diagnostic is an advisory flag attached to a crash resolution.
type Diagnostic int

const (
	// DiagPCNotInExecutable flags a program counter resolving into a
	// region without execute permission.
	DiagPCNotInExecutable Diagnostic = iota
	// DiagSPOutsideStackRegion flags a stack or frame pointer
	// resolving outside any stack region.
	DiagSPOutsideStackRegion
	// DiagInWritableExecutable flags a register resolving into a
	// region that is both writable and executable.
	DiagInWritableExecutable
)

// String returns a human readable description of the diagnostic.
func (d Diagnostic) String() string {
	switch d {
	case DiagPCNotInExecutable:
		return "program counter is not in an executable region"
	case DiagSPOutsideStackRegion:
		return "stack pointer is not in a stack region"
	case DiagInWritableExecutable:
		return "region is both writable and executable"
	}
	return "unknown diagnostic"
}

// MarshalJSON implements json.Marshaler.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	switch d {
	case DiagPCNotInExecutable:
		return []byte(`"pcNotInExecutable"`), nil
	case DiagSPOutsideStackRegion:
		return []byte(`"spOutsideStackRegion"`), nil
	case DiagInWritableExecutable:
		return []byte(`"inWritableExecutable"`), nil
	}
	return []byte(`"unknown"`), nil
}

// CrashResolution is the outcome of resolving one register address
// against the address space. A nil Region means the address is not
// mapped.
type CrashResolution struct {
	// Role is the register the address came from.
	Role RegisterRole `json:"role"`
	// Address is the raw register value.
	Address uint64 `json:"address"`
	// Region is the containing region, nil if the address is unmapped.
	Region *procmaps.Region `json:"region,omitempty"`
	// RegionIndex is the index of Region in the address space, -1 if
	// unmapped.
	RegionIndex int `json:"regionIndex"`
	// Offset is Address minus the region start, 0 if unmapped.
	Offset uint64 `json:"offset"`
	// Binary is the region pathname for file-backed regions, the
	// pseudo name otherwise, or "[anon]" for anonymous regions.
	Binary string `json:"binary,omitempty"`
	// SymbolizationCommand is the addr2line invocation for file-backed
	// code and rodata regions, empty otherwise. It is never executed
	// here.
	SymbolizationCommand string `json:"symbolizationCommand,omitempty"`
	// Diagnostics holds the advisory flags that apply.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Mapped returns true if the address fell inside a region.
func (r *CrashResolution) Mapped() bool {
	return r.Region != nil
}

// BacktraceFrame is one resolved backtrace address.
type BacktraceFrame struct {
	Index   int              `json:"index"`
	Address uint64           `json:"address"`
	Region  *procmaps.Region `json:"region,omitempty"`
	Offset  uint64           `json:"offset"`
	Binary  string           `json:"binary,omitempty"`
}

// Mapped returns true if the address fell inside a region.
func (f *BacktraceFrame) Mapped() bool {
	return f.Region != nil
}

func binaryName(region *procmaps.Region) string {
	if region.Pathname == "" {
		return "[anon]"
	}
	return region.Pathname
}

func symbolizationCommand(region *procmaps.Region, offset uint64) string {
	if !region.IsFileBacked() {
		return ""
	}
	if region.Class != procmaps.ClassCode && region.Class != procmaps.ClassRodata {
		return ""
	}
	return fmt.Sprintf("addr2line -e %s 0x%x", region.Pathname, offset)
}

func resolveRegister(space *procmaps.AddressSpace, role RegisterRole, addr uint64) *CrashResolution {
	res := &CrashResolution{
		Role:        role,
		Address:     addr,
		RegionIndex: -1,
	}

	i := space.FindRegionIndex(addr)
	if i < 0 {
		return res
	}
	region := space.At(i)

	res.Region = region
	res.RegionIndex = i
	res.Offset = addr - region.Start
	res.Binary = binaryName(region)
	res.SymbolizationCommand = symbolizationCommand(region, res.Offset)

	if role == RolePC && !region.IsExecutable() {
		res.Diagnostics = append(res.Diagnostics, DiagPCNotInExecutable)
	}
	if (role == RoleSP || role == RoleFP) && region.Class != procmaps.ClassStack {
		res.Diagnostics = append(res.Diagnostics, DiagSPOutsideStackRegion)
	}
	if region.IsWritable() && region.IsExecutable() {
		res.Diagnostics = append(res.Diagnostics, DiagInWritableExecutable)
	}

	return res
}

// ResolveCrash resolves every provided register against the address
// space. Resolutions appear in the fixed order PC, LR, SP, FP with
// absent registers omitted. Resolution never fails, unmapped addresses
// yield a resolution with a nil region.
func ResolveCrash(space *procmaps.AddressSpace, ctx *CrashContext) []*CrashResolution {
	if !ctx.HasRegisters() {
		return nil
	}

	ordered := []struct {
		role RegisterRole
		addr *uint64
	}{
		{RolePC, ctx.PC},
		{RoleLR, ctx.LR},
		{RoleSP, ctx.SP},
		{RoleFP, ctx.FP},
	}

	resolutions := make([]*CrashResolution, 0, 4)
	for _, reg := range ordered {
		if reg.addr == nil {
			continue
		}
		resolutions = append(resolutions, resolveRegister(space, reg.role, *reg.addr))
	}
	return resolutions
}

// ResolveBacktrace resolves raw backtrace addresses in input order.
// Unlike register resolutions, frames carry no diagnostics.
func ResolveBacktrace(space *procmaps.AddressSpace, addrs []uint64) []*BacktraceFrame {
	if len(addrs) == 0 {
		return nil
	}
	frames := make([]*BacktraceFrame, len(addrs))
	for i, addr := range addrs {
		frame := &BacktraceFrame{Index: i, Address: addr}
		if region := space.FindRegion(addr); region != nil {
			frame.Region = region
			frame.Offset = addr - region.Start
			frame.Binary = binaryName(region)
		}
		frames[i] = frame
	}
	return frames
}

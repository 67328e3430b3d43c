package procmaps

import (
	"fmt"
	"strings"

	"github.com/targodan/go-errors"
)

// Sharing describes the sharing mode of a memory region, i.e. the
// fourth character of the kernel's permission string.
type Sharing int

const (
	// SharingPrivate marks a private (copy-on-write) mapping.
	SharingPrivate Sharing = iota
	// SharingShared marks a shared mapping.
	SharingShared
)

// String returns the single-character kernel representation.
func (s Sharing) String() string {
	if s == SharingShared {
		return "s"
	}
	return "p"
}

// MarshalJSON implements json.Marshaler.
func (s Sharing) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Permissions describes the access permissions of a memory region.
type Permissions struct {
	// Is read access allowed
	Read bool `json:"read"`
	// Is write access allowed
	Write bool `json:"write"`
	// Is execute access allowed
	Execute bool `json:"execute"`
	// Private or shared mapping
	Sharing Sharing `json:"sharing"`
}

// ParsePermissions parses the four-character permission string as found
// in /proc/<pid>/maps, e.g. "r-xp". The input must be exactly four
// characters long, positions one to three must be 'r'/'w'/'x' or '-'
// respectively, and position four must be 'p' or 's'.
func ParsePermissions(s string) (Permissions, error) {
	perm := Permissions{}
	if len(s) != 4 {
		return perm, errors.Newf("permission string must be exactly 4 characters, got %d", len(s))
	}

	switch s[0] {
	case 'r':
		perm.Read = true
	case '-':
	default:
		return perm, errors.Newf("character '%c' is not valid in the read slot", s[0])
	}
	switch s[1] {
	case 'w':
		perm.Write = true
	case '-':
	default:
		return perm, errors.Newf("character '%c' is not valid in the write slot", s[1])
	}
	switch s[2] {
	case 'x':
		perm.Execute = true
	case '-':
	default:
		return perm, errors.Newf("character '%c' is not valid in the execute slot", s[2])
	}
	switch s[3] {
	case 'p':
		perm.Sharing = SharingPrivate
	case 's':
		perm.Sharing = SharingShared
	default:
		return perm, errors.Newf("character '%c' is not valid in the sharing slot", s[3])
	}

	return perm, nil
}

// String returns the four-character kernel representation of the
// permissions, e.g. "rw-p".
func (p Permissions) String() string {
	var sb strings.Builder
	if p.Read {
		sb.WriteByte('r')
	} else {
		sb.WriteByte('-')
	}
	if p.Write {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('-')
	}
	if p.Execute {
		sb.WriteByte('x')
	} else {
		sb.WriteByte('-')
	}
	sb.WriteString(p.Sharing.String())
	return sb.String()
}

// EqualTo returns true if the other Permissions is exactly equal to this one.
func (p Permissions) EqualTo(other Permissions) bool {
	return p == other
}

// Device is the major:minor device number pair of the backing device.
type Device struct {
	Major uint64 `json:"major"`
	Minor uint64 `json:"minor"`
}

// String returns the kernel representation, e.g. "b3:04".
func (d Device) String() string {
	return fmt.Sprintf("%02x:%02x", d.Major, d.Minor)
}

// Region is one contiguous virtual memory mapping of a process, i.e.
// one line of /proc/<pid>/maps.
type Region struct {
	// Start is the first address of the region.
	Start uint64 `json:"start"`
	// End is the first address past the region, i.e. Start of the
	// region is inclusive, End is exclusive.
	End uint64 `json:"end"`
	// Perms are the access permissions of the region.
	Perms Permissions `json:"permissions"`
	// Offset is the offset into the mapped file, 0 for anonymous regions.
	Offset uint64 `json:"offset"`
	// Dev is the device holding the mapped file.
	Dev Device `json:"device"`
	// Inode of the mapped file, 0 for anonymous regions.
	Inode uint64 `json:"inode"`
	// Pathname is the mapped file path, a bracketed pseudo name such as
	// "[heap]", or empty for anonymous regions. Preserved verbatim.
	Pathname string `json:"pathname"`
	// Class is the semantic classification of this region, assigned
	// during construction.
	Class SegmentClass `json:"class"`
}

// NewRegion validates the raw fields of one mapping and returns the
// resulting Region with its classification applied. The pathname must
// already be trimmed of surrounding whitespace.
func NewRegion(start, end uint64, perms string, offset uint64, dev Device, inode uint64, pathname string) (*Region, error) {
	if start >= end {
		return nil, errors.Newf("invalid address range 0x%x-0x%x: %w", start, end, ErrInvalidRange)
	}
	p, err := ParsePermissions(perms)
	if err != nil {
		return nil, errors.Newf("%v: %w", err, ErrInvalidPermissions)
	}

	r := &Region{
		Start:    start,
		End:      end,
		Perms:    p,
		Offset:   offset,
		Dev:      dev,
		Inode:    inode,
		Pathname: pathname,
	}
	r.Class = Classify(p, pathname)
	return r, nil
}

// Size returns the size of the region in bytes.
func (r *Region) Size() uint64 {
	return r.End - r.Start
}

// Contains returns true if addr falls inside this region. The end
// address is exclusive.
func (r *Region) Contains(addr uint64) bool {
	return r.Start <= addr && addr < r.End
}

// IsReadable returns true if read access is allowed.
func (r *Region) IsReadable() bool { return r.Perms.Read }

// IsWritable returns true if write access is allowed.
func (r *Region) IsWritable() bool { return r.Perms.Write }

// IsExecutable returns true if execute access is allowed.
func (r *Region) IsExecutable() bool { return r.Perms.Execute }

// IsPrivate returns true for private (copy-on-write) mappings.
func (r *Region) IsPrivate() bool { return r.Perms.Sharing == SharingPrivate }

// IsShared returns true for shared mappings.
func (r *Region) IsShared() bool { return r.Perms.Sharing == SharingShared }

// IsAnonymous returns true if the region has no pathname at all.
func (r *Region) IsAnonymous() bool { return r.Pathname == "" }

// IsPseudo returns true for kernel pseudo mappings such as "[heap]"
// or "[vdso]".
func (r *Region) IsPseudo() bool {
	return strings.HasPrefix(r.Pathname, "[") && strings.HasSuffix(r.Pathname, "]")
}

// IsFileBacked returns true if the region is backed by a file on disk.
func (r *Region) IsFileBacked() bool {
	return r.Pathname != "" && !r.IsPseudo()
}

// String renders the region back into the kernel maps format. Fields
// are separated by exactly one space.
func (r *Region) String() string {
	s := fmt.Sprintf("%08x-%08x %s %08x %s %d",
		r.Start, r.End, r.Perms, r.Offset, r.Dev, r.Inode)
	if r.Pathname != "" {
		s += " " + r.Pathname
	}
	return s
}

// FormatAddress renders addr the way the region table shows addresses,
// with a width fitting the address value.
func FormatAddress(addr uint64) string {
	if addr < (1 << 32) {
		return fmt.Sprintf("0x%08x", addr)
	}
	return fmt.Sprintf("0x%016x", addr)
}

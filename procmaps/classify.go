package procmaps

import "strings"

// SegmentClass is the semantic role of a memory region, inferred from
// its permissions and pathname.
type SegmentClass int

const (
	// ClassUnknown is any permission/pathname combination not matched
	// by the classification rules.
	ClassUnknown SegmentClass = iota
	// ClassCode is an executable, file-backed region.
	ClassCode
	// ClassRodata is a read-only, non-executable, file-backed region.
	ClassRodata
	// ClassData is a writable, non-executable, file-backed region.
	ClassData
	// ClassBss is reserved for zero-initialized data adjacent to a
	// binary's data segment. The classifier never emits it, anonymous
	// writable regions are reported as ClassAnon instead.
	ClassBss
	// ClassHeap is the "[heap]" pseudo mapping.
	ClassHeap
	// ClassStack is the "[stack]" or "[stack:<tid>]" pseudo mapping.
	ClassStack
	// ClassVdso covers the kernel-provided pseudo mappings "[vdso]",
	// "[vvar]", "[vsyscall]", "[sigpage]" and "[vectors]".
	ClassVdso
	// ClassAnon is an anonymous region not otherwise classified.
	ClassAnon
)

var segmentClassNames = map[SegmentClass]string{
	ClassUnknown: "UNKNOWN",
	ClassCode:    "CODE",
	ClassRodata:  "RODATA",
	ClassData:    "DATA",
	ClassBss:     "BSS",
	ClassHeap:    "HEAP",
	ClassStack:   "STACK",
	ClassVdso:    "VDSO",
	ClassAnon:    "ANON",
}

// String returns the display name of the class, e.g. "CODE".
func (c SegmentClass) String() string {
	name, ok := segmentClassNames[c]
	if !ok {
		return "UNKNOWN"
	}
	return name
}

// MarshalJSON implements json.Marshaler.
func (c SegmentClass) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// AllSegmentClasses lists every class in display order.
func AllSegmentClasses() []SegmentClass {
	return []SegmentClass{
		ClassCode, ClassRodata, ClassData, ClassBss,
		ClassHeap, ClassStack, ClassVdso, ClassAnon, ClassUnknown,
	}
}

// vdsoNames are the kernel-provided pseudo mappings that classify as
// ClassVdso.
var vdsoNames = map[string]bool{
	"[vdso]":     true,
	"[vvar]":     true,
	"[vsyscall]": true,
	"[sigpage]":  true,
	"[vectors]":  true,
}

func isStackName(pathname string) bool {
	if pathname == "[stack]" {
		return true
	}
	// Thread stacks appear as [stack:<tid>] on older kernels.
	if !strings.HasPrefix(pathname, "[stack:") || !strings.HasSuffix(pathname, "]") {
		return false
	}
	tid := pathname[len("[stack:") : len(pathname)-1]
	if tid == "" {
		return false
	}
	for _, c := range tid {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Classify maps the permissions and pathname of a region onto its
// semantic class. The rules are evaluated in order, first match wins:
//
//  1. "[heap]" is ClassHeap.
//  2. "[stack]" and "[stack:<tid>]" are ClassStack.
//  3. The kernel vdso pseudo mappings are ClassVdso.
//  4. Executable file-backed regions are ClassCode.
//  5. Read-only file-backed regions are ClassRodata.
//  6. Writable file-backed regions are ClassData.
//  7. Anonymous regions are ClassAnon.
//  8. Everything else is ClassUnknown.
//
// Classify is a pure function, identical inputs always yield the same
// class.
func Classify(perms Permissions, pathname string) SegmentClass {
	switch {
	case pathname == "[heap]":
		return ClassHeap
	case isStackName(pathname):
		return ClassStack
	case vdsoNames[pathname]:
		return ClassVdso
	}

	fileBacked := pathname != "" &&
		!(strings.HasPrefix(pathname, "[") && strings.HasSuffix(pathname, "]"))

	switch {
	case fileBacked && perms.Execute:
		return ClassCode
	case fileBacked && perms.Read && !perms.Write && !perms.Execute:
		return ClassRodata
	case fileBacked && perms.Write && !perms.Execute:
		return ClassData
	case pathname == "":
		return ClassAnon
	}
	return ClassUnknown
}

package procmaps

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/targodan/go-errors"
)

// AddressSpace is the ordered, validated collection of all memory
// regions of one process. It is immutable after construction and safe
// to share across readers. Instances are only ever produced by Parse
// and its variants.
type AddressSpace struct {
	regions []*Region
}

func newAddressSpace(regions []*Region) *AddressSpace {
	return &AddressSpace{regions: regions}
}

// Regions returns the regions ordered by ascending start address.
// The returned slice must not be modified.
func (s *AddressSpace) Regions() []*Region {
	return s.regions
}

// Len returns the number of regions.
func (s *AddressSpace) Len() int {
	return len(s.regions)
}

// At returns the i-th region, ordered by start address.
func (s *AddressSpace) At(i int) *Region {
	return s.regions[i]
}

// FindRegionIndex returns the index of the region containing addr, or
// -1 if addr is not mapped. The lookup is a binary search over the
// region starts.
func (s *AddressSpace) FindRegionIndex(addr uint64) int {
	// First region starting above addr; the candidate is its predecessor.
	i := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].Start > addr
	})
	if i == 0 {
		return -1
	}
	if s.regions[i-1].Contains(addr) {
		return i - 1
	}
	return -1
}

// FindRegion returns the region containing addr, or nil if addr is
// not mapped.
func (s *AddressSpace) FindRegion(addr uint64) *Region {
	i := s.FindRegionIndex(addr)
	if i < 0 {
		return nil
	}
	return s.regions[i]
}

// TotalSize returns the sum of all region sizes in bytes.
func (s *AddressSpace) TotalSize() uint64 {
	var total uint64
	for _, r := range s.regions {
		total += r.Size()
	}
	return total
}

// LowAddress returns the lowest mapped address, 0 for an empty space.
func (s *AddressSpace) LowAddress() uint64 {
	if len(s.regions) == 0 {
		return 0
	}
	return s.regions[0].Start
}

// HighAddress returns the first address past the highest mapped
// region, 0 for an empty space.
func (s *AddressSpace) HighAddress() uint64 {
	if len(s.regions) == 0 {
		return 0
	}
	return s.regions[len(s.regions)-1].End
}

// MarshalJSON implements json.Marshaler, rendering the region list.
func (s *AddressSpace) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.regions)
}

// ParseFile parses a maps snapshot captured to a file.
func ParseFile(path string) (*AddressSpace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Newf("could not open maps file, reason: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

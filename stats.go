package pmap

import (
	u "github.com/rjNemo/underscore"

	"github.com/kribakarans/pmap/procmaps"
)

// ClassStat aggregates all regions of one segment class.
type ClassStat struct {
	Class procmaps.SegmentClass `json:"class"`
	// Count is the number of regions of this class.
	Count int `json:"count"`
	// TotalBytes is the summed size of all regions of this class.
	TotalBytes uint64 `json:"totalBytes"`
	// Percentage is TotalBytes relative to the whole mapped size, in
	// percent. The renderer decides display precision.
	Percentage float64 `json:"percentage"`
}

// Statistics holds the per-class aggregation over one address space.
type Statistics struct {
	// Classes lists the per-class totals in display order, only for
	// classes that occur at least once.
	Classes []ClassStat `json:"classes"`
	// RegionCount is the total number of regions.
	RegionCount int `json:"regionCount"`
	// TotalBytes is the summed size of all regions.
	TotalBytes uint64 `json:"totalBytes"`
}

// ComputeStatistics aggregates region counts and byte totals per
// segment class. Running it twice on the same address space yields
// identical results. An empty address space yields zero totals and no
// class entries.
func ComputeStatistics(space *procmaps.AddressSpace) *Statistics {
	stats := &Statistics{
		RegionCount: space.Len(),
		TotalBytes:  space.TotalSize(),
	}

	counts := make(map[procmaps.SegmentClass]int)
	sizes := make(map[procmaps.SegmentClass]uint64)
	for _, region := range space.Regions() {
		counts[region.Class]++
		sizes[region.Class] += region.Size()
	}

	for _, class := range procmaps.AllSegmentClasses() {
		if counts[class] == 0 {
			continue
		}
		percentage := 0.0
		if stats.TotalBytes > 0 {
			percentage = float64(sizes[class]) / float64(stats.TotalBytes) * 100
		}
		stats.Classes = append(stats.Classes, ClassStat{
			Class:      class,
			Count:      counts[class],
			TotalBytes: sizes[class],
			Percentage: percentage,
		})
	}

	return stats
}

// BinaryGroup is the set of regions sharing one pathname. Anonymous
// regions fall into a single group with an empty pathname.
type BinaryGroup struct {
	// Pathname of the group, empty for the anonymous bucket.
	Pathname string `json:"pathname"`
	// Regions of the group, ordered by ascending start address.
	Regions []*procmaps.Region `json:"regions"`
	// TotalBytes is the summed size of the group's regions.
	TotalBytes uint64 `json:"totalBytes"`
}

// DisplayName returns the pathname, or "[anon]" for the anonymous
// bucket.
func (g *BinaryGroup) DisplayName() string {
	if g.Pathname == "" {
		return "[anon]"
	}
	return g.Pathname
}

// GroupByBinary buckets the regions by pathname. Groups are ordered by
// the start address of their first region, regions within a group stay
// in address order.
func GroupByBinary(space *procmaps.AddressSpace) []*BinaryGroup {
	byPath := make(map[string]*BinaryGroup)
	groups := make([]*BinaryGroup, 0)

	for _, region := range space.Regions() {
		group, ok := byPath[region.Pathname]
		if !ok {
			group = &BinaryGroup{Pathname: region.Pathname}
			byPath[region.Pathname] = group
			groups = append(groups, group)
		}
		group.Regions = append(group.Regions, region)
	}

	for _, group := range groups {
		group.TotalBytes = u.Reduce(group.Regions, func(r *procmaps.Region, acc uint64) uint64 {
			return acc + r.Size()
		}, 0)
	}

	return groups
}

// LargestRegions returns the n largest regions, largest first. Ties
// keep address order.
func LargestRegions(space *procmaps.AddressSpace, n int) []*procmaps.Region {
	regions := make([]*procmaps.Region, space.Len())
	copy(regions, space.Regions())

	// Insertion sort keeps this stable; region counts are small enough.
	for i := 1; i < len(regions); i++ {
		for j := i; j > 0 && regions[j-1].Size() < regions[j].Size(); j-- {
			regions[j-1], regions[j] = regions[j], regions[j-1]
		}
	}

	if n > len(regions) {
		n = len(regions)
	}
	return regions[:n]
}

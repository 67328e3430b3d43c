package pmap

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	u "github.com/rjNemo/underscore"
	"github.com/targodan/go-errors"

	"github.com/kribakarans/pmap/procmaps"
)

// RegionFilterFunc is a callback, used to filter *procmaps.Region
// instances.
type RegionFilterFunc func(region *procmaps.Region) bool

// RegionFilter selects a subset of regions for display purposes. It
// never affects the analyses, which always run over the full address
// space.
type RegionFilter interface {
	Filter(region *procmaps.Region) bool
	Description() string
}

type baseFilter struct {
	filter      RegionFilterFunc
	description string
}

func (f *baseFilter) Filter(region *procmaps.Region) bool {
	return f.filter(region)
}

func (f *baseFilter) Description() string {
	return f.description
}

// NewFilterFromFunc creates a new filter from a given RegionFilterFunc.
func NewFilterFromFunc(filter RegionFilterFunc, description string) RegionFilter {
	return &baseFilter{
		filter:      filter,
		description: description,
	}
}

type andFilter struct {
	filters []RegionFilter
}

func (f *andFilter) Filter(region *procmaps.Region) bool {
	for _, sub := range f.filters {
		if !sub.Filter(region) {
			return false
		}
	}
	return true
}

func (f *andFilter) Description() string {
	if len(f.filters) == 0 {
		return "none"
	}
	descriptions := u.Map(f.filters, func(sub RegionFilter) string {
		return sub.Description()
	})
	return strings.Join(descriptions, " and ")
}

// NewAndFilter creates a filter matching regions that every given
// filter matches. Nil entries are ignored.
func NewAndFilter(filters ...RegionFilter) RegionFilter {
	cleaned := make([]RegionFilter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			cleaned = append(cleaned, f)
		}
	}
	return &andFilter{filters: cleaned}
}

// NewPermissionsFilter creates a filter matching regions whose
// permissions include all permissions given in perms, e.g. "wx" for
// regions that are at least writable and executable.
func NewPermissionsFilter(perms string) (RegionFilter, error) {
	var needRead, needWrite, needExec bool
	for _, c := range strings.ToLower(perms) {
		switch c {
		case 'r':
			needRead = true
		case 'w':
			needWrite = true
		case 'x':
			needExec = true
		case '-':
		default:
			return nil, errors.Newf("character '%c' is not a valid permission character", c)
		}
	}
	return NewFilterFromFunc(
		func(region *procmaps.Region) bool {
			if needRead && !region.IsReadable() {
				return false
			}
			if needWrite && !region.IsWritable() {
				return false
			}
			return !needExec || region.IsExecutable()
		},
		fmt.Sprintf("permissions include %q", perms),
	), nil
}

// NewClassFilter creates a filter matching regions of any of the given
// classes, named as the classifier displays them ("CODE", "HEAP", ...).
func NewClassFilter(names []string) (RegionFilter, error) {
	wanted := make(map[procmaps.SegmentClass]bool)
	for _, name := range names {
		found := false
		for _, class := range procmaps.AllSegmentClasses() {
			if strings.EqualFold(name, class.String()) {
				wanted[class] = true
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Newf("%q is not a segment class", name)
		}
	}
	return NewFilterFromFunc(
		func(region *procmaps.Region) bool {
			return wanted[region.Class]
		},
		fmt.Sprintf("class is one of %v", names),
	), nil
}

// NewMinSizeFilter creates a filter matching regions of at least the
// given size in bytes.
func NewMinSizeFilter(size uint64) RegionFilter {
	return NewFilterFromFunc(
		func(region *procmaps.Region) bool {
			return region.Size() >= size
		},
		fmt.Sprintf("size >= %s", humanize.Bytes(size)),
	)
}

// NewMaxSizeFilter creates a filter matching regions of at most the
// given size in bytes.
func NewMaxSizeFilter(size uint64) RegionFilter {
	return NewFilterFromFunc(
		func(region *procmaps.Region) bool {
			return region.Size() <= size
		},
		fmt.Sprintf("size <= %s", humanize.Bytes(size)),
	)
}

// FilterRegions returns the regions of the space matching the filter,
// in address order. A nil filter matches everything.
func FilterRegions(space *procmaps.AddressSpace, filter RegionFilter) []*procmaps.Region {
	if filter == nil {
		return space.Regions()
	}
	return u.Filter(space.Regions(), filter.Filter)
}

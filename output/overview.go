package output

import (
	"fmt"
	"io"
	"strings"

	u "github.com/rjNemo/underscore"

	"github.com/kribakarans/pmap"
	"github.com/kribakarans/pmap/procmaps"
)

func isSharedLib(region *procmaps.Region, mainBinary string) bool {
	if !region.IsFileBacked() {
		return false
	}
	if mainBinary != "" && region.Pathname == mainBinary {
		return false
	}
	return strings.Contains(region.Pathname, ".so") ||
		strings.Contains(region.Pathname, "/lib/") ||
		strings.Contains(region.Pathname, "/usr/lib/")
}

func formatOverviewRegion(region *procmaps.Region) string {
	return fmt.Sprintf("0x%08x-0x%08x  %-4s %-6s %s",
		region.Start, region.End, region.Perms, region.Class, pathOrAnon(region.Pathname))
}

// RenderOverview writes the boxed high-level segment overview, with
// the regions bucketed into stack, shared libraries, heap, data and
// code sections.
func RenderOverview(w io.Writer, data *pmap.ReportData) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, center("SEGMENT OVERVIEW", reportWidth))

	regions := data.Space.Regions()
	mainBinary := pmap.MainBinaryPath(data.Space, data.Metadata)

	sections := []struct {
		title   string
		regions []*procmaps.Region
	}{
		{"Stack", u.Filter(regions, func(r *procmaps.Region) bool {
			return r.Class == procmaps.ClassStack
		})},
		{"Shared Libs", u.Filter(regions, func(r *procmaps.Region) bool {
			return isSharedLib(r, mainBinary)
		})},
		{"Heap", u.Filter(regions, func(r *procmaps.Region) bool {
			return r.Class == procmaps.ClassHeap
		})},
		{"BSS / Data", u.Filter(regions, func(r *procmaps.Region) bool {
			switch r.Class {
			case procmaps.ClassData, procmaps.ClassAnon, procmaps.ClassBss, procmaps.ClassRodata:
				return !isSharedLib(r, mainBinary)
			}
			return false
		})},
		{"Code (.text)", u.Filter(regions, func(r *procmaps.Region) bool {
			return r.Class == procmaps.ClassCode && !isSharedLib(r, mainBinary)
		})},
	}

	width := len("SEGMENT OVERVIEW")
	for _, section := range sections {
		if len(section.title) > width {
			width = len(section.title)
		}
		for _, region := range section.regions {
			if l := len(formatOverviewRegion(region)); l > width {
				width = l
			}
		}
	}

	boxLine := func(text string) {
		fmt.Fprintf(w, "| %-*s |\n", width, text)
	}

	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", width+2))
	for i, section := range sections {
		if i > 0 {
			fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", width+2))
		}
		boxLine(section.title)
		if len(section.regions) == 0 {
			boxLine("(n/a)")
			continue
		}
		for _, region := range section.regions {
			boxLine(formatOverviewRegion(region))
		}
	}
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", width+2))
	fmt.Fprintln(w)
}

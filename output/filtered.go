package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kribakarans/pmap"
	"github.com/kribakarans/pmap/procmaps"
)

// RenderFilteredTable writes the tabular view restricted to regions
// matching the filter, naming the active filters above the table.
func RenderFilteredTable(w io.Writer, data *pmap.ReportData, filter pmap.RegionFilter) {
	fmt.Fprintf(w, "Filters: %s\n", filter.Description())
	sectionHeader(w, "MEMORY MAP - FILTERED VIEW", tableWidth)

	format := "%-18s %-18s %12s  %-6s %-10s %s\n"
	fmt.Fprintf(w, format, "Start Addr", "End Addr", "Size", "Perms", "Type", "Binary/Mapping")
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))

	regions := pmap.FilterRegions(data.Space, filter)
	for _, region := range regions {
		fmt.Fprintf(w, format,
			procmaps.FormatAddress(region.Start),
			procmaps.FormatAddress(region.End),
			humanize.Comma(int64(region.Size())),
			region.Perms,
			region.Class,
			pathOrAnon(region.Pathname))
	}

	fmt.Fprintln(w, strings.Repeat("-", tableWidth))
	fmt.Fprintf(w, "%d of %d regions match\n\n", len(regions), data.Space.Len())
}

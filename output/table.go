package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kribakarans/pmap"
	"github.com/kribakarans/pmap/procmaps"
)

// RenderTable writes the tabular view of the memory map.
func RenderTable(w io.Writer, data *pmap.ReportData) {
	sectionHeader(w, "MEMORY MAP - TABULAR VIEW", tableWidth)

	meta := data.Metadata
	fmt.Fprintf(w, "Process: %-20s PID: %-10d Regions: %-5d Total Size: %s\n",
		meta.ProcessName, meta.PID, meta.RegionCount, commaBytes(meta.TotalSize))
	fmt.Fprintln(w, strings.Repeat("=", tableWidth))

	format := "%-18s %-18s %12s  %-6s %-10s %s\n"
	fmt.Fprintf(w, format, "Start Addr", "End Addr", "Size", "Perms", "Type", "Binary/Mapping")
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))

	for _, region := range data.Space.Regions() {
		fmt.Fprintf(w, format,
			procmaps.FormatAddress(region.Start),
			procmaps.FormatAddress(region.End),
			humanize.Comma(int64(region.Size())),
			region.Perms,
			region.Class,
			pathOrAnon(region.Pathname))
	}

	fmt.Fprintln(w, strings.Repeat("=", tableWidth))
	fmt.Fprintln(w)
}

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kribakarans/pmap"
)

// RenderStatistics writes the per-class statistics table.
func RenderStatistics(w io.Writer, data *pmap.ReportData) {
	sectionHeader(w, "MEMORY STATISTICS", reportWidth)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-15s %-8s %-22s %s\n", "Segment Type", "Count", "Total Size", "Percentage")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	for _, stat := range data.Statistics.Classes {
		fmt.Fprintf(w, "%-15s %-8d %16s bytes  %6.2f%%\n",
			stat.Class, stat.Count, humanize.Comma(int64(stat.TotalBytes)), stat.Percentage)
	}

	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "%-15s %-8d %16s bytes  100.00%%\n",
		"TOTAL", data.Statistics.RegionCount, humanize.Comma(int64(data.Statistics.TotalBytes)))
	fmt.Fprintln(w)
}

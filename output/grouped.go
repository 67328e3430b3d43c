package output

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/kribakarans/pmap"
)

// RenderGrouped writes the memory map grouped by binary.
func RenderGrouped(w io.Writer, data *pmap.ReportData) {
	sectionHeader(w, "MEMORY MAP - GROUPED BY BINARY", reportWidth)
	fmt.Fprintln(w)

	for _, group := range data.Groups {
		fmt.Fprintf(w, "%s\n", group.DisplayName())
		fmt.Fprintf(w, "   Total size: %s (%d regions)\n", commaBytes(group.TotalBytes), len(group.Regions))

		for _, region := range group.Regions {
			fmt.Fprintf(w, "   0x%08x-0x%08x  %-5s  %-8s  %12s bytes\n",
				region.Start, region.End, region.Perms, region.Class,
				humanize.Comma(int64(region.Size())))
		}
		fmt.Fprintln(w)
	}
}

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/kribakarans/pmap"
	"github.com/kribakarans/pmap/procmaps"
)

func crashMarkers(data *pmap.ReportData, region *procmaps.Region) string {
	if !data.HasCrashContext() {
		return ""
	}
	markers := make([]string, 0, 4)
	for _, res := range data.CrashResolutions {
		if res.Mapped() && res.Region == region {
			markers = append(markers, res.Role.String())
		}
	}
	if len(markers) == 0 {
		return ""
	}
	return color.RedString(" <- %s", strings.Join(markers, " "))
}

// RenderASCIILayout writes the address-ordered diagram of the memory
// layout, highest addresses first, with crash register markers on the
// regions they resolve into.
func RenderASCIILayout(w io.Writer, data *pmap.ReportData) {
	sectionHeader(w, "MEMORY LAYOUT - ASCII VISUALIZATION", reportWidth)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "High Memory")
	fmt.Fprintln(w, "     ^")
	fmt.Fprintln(w, "     |")

	regions := data.Space.Regions()
	for i := len(regions) - 1; i >= 0; i-- {
		region := regions[i]
		fmt.Fprintf(w, "0x%08x --+- %-5s %-8s %s%s\n",
			region.End, region.Perms, region.Class,
			pathOrAnon(region.Pathname), crashMarkers(data, region))
		fmt.Fprintln(w, "             |")
		fmt.Fprintf(w, "0x%08x --+- (size: %s)\n", region.Start, commaBytes(region.Size()))
		fmt.Fprintln(w, "     |")
	}

	fmt.Fprintln(w, "     v")
	fmt.Fprintln(w, "Low Memory")
	fmt.Fprintln(w)
}

package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kribakarans/pmap"
)

// RenderSecurity writes the security audit findings.
func RenderSecurity(w io.Writer, data *pmap.ReportData) {
	sectionHeader(w, "SECURITY ANALYSIS", reportWidth)
	fmt.Fprintln(w)

	if len(data.SecurityFindings) == 0 {
		fmt.Fprintln(w, color.GreenString("No suspicious writable+executable regions found."))
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, "Security issues found:")
	for _, finding := range data.SecurityFindings {
		region := finding.Region
		fmt.Fprintf(w, "  %s 0x%08x-0x%08x %s %s\n",
			color.RedString("WRITABLE+EXECUTABLE:"),
			region.Start, region.End, region.Perms, pathOrAnon(region.Pathname))
	}
	fmt.Fprintln(w)
}

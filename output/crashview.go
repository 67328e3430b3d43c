package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kribakarans/pmap"
)

// RenderCrashAnalysis writes the per-register crash context analysis,
// including the symbolization command and any diagnostics.
func RenderCrashAnalysis(w io.Writer, data *pmap.ReportData) {
	sectionHeader(w, "CRASH CONTEXT ANALYSIS", reportWidth)
	fmt.Fprintln(w)

	for _, res := range data.CrashResolutions {
		fmt.Fprintf(w, "%s (%s):\n", res.Role.Description(), res.Role)
		fmt.Fprintf(w, "  Address: 0x%016x\n", res.Address)

		if !res.Mapped() {
			fmt.Fprintf(w, "  %s\n", color.RedString("ERROR: Address not found in any mapped region!"))
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprintf(w, "  Region: %s [%s]\n", res.Binary, res.Region.Class)
		fmt.Fprintf(w, "  Permissions: %s\n", res.Region.Perms)
		fmt.Fprintf(w, "  Offset in region: 0x%x\n", res.Offset)
		if res.SymbolizationCommand != "" {
			fmt.Fprintf(w, "  Debug command: %s\n", res.SymbolizationCommand)
		}
		for _, diag := range res.Diagnostics {
			fmt.Fprintf(w, "  %s\n", color.YellowString("WARNING: %s", diag))
		}
		fmt.Fprintln(w)
	}

	if len(data.Backtrace) > 0 {
		fmt.Fprintln(w, "Backtrace Analysis:")
		fmt.Fprintln(w)
		for _, frame := range data.Backtrace {
			if frame.Mapped() {
				fmt.Fprintf(w, "  #%d: 0x%016x -> %s + 0x%x [%s]\n",
					frame.Index, frame.Address, frame.Binary, frame.Offset, frame.Region.Class)
			} else {
				fmt.Fprintf(w, "  #%d: 0x%016x -> NOT MAPPED\n", frame.Index, frame.Address)
			}
		}
		fmt.Fprintln(w)
	}
}

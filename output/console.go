// Package output renders pmap report data for humans, on the console
// and as a self-contained HTML page. Every renderer is a pure
// formatter over *pmap.ReportData, no analysis happens here.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kribakarans/pmap"
)

const (
	tableWidth  = 130
	reportWidth = 90
)

func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	pad := (width - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}

func sectionHeader(w io.Writer, title string, width int) {
	rule := strings.Repeat("=", width)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, center(title, width))
	fmt.Fprintln(w, rule)
}

func commaBytes(n uint64) string {
	return humanize.Comma(int64(n)) + " bytes"
}

func pathOrAnon(pathname string) string {
	if pathname == "" {
		return "[anon]"
	}
	return pathname
}

// RenderAll writes every console report in the order the full report
// shows them, including crash analysis when present.
func RenderAll(w io.Writer, data *pmap.ReportData) {
	RenderTable(w, data)
	RenderStatistics(w, data)
	RenderGrouped(w, data)
	RenderOverview(w, data)
	RenderASCIILayout(w, data)
	if data.HasCrashContext() || len(data.Backtrace) > 0 {
		RenderCrashAnalysis(w, data)
	}
	RenderSecurity(w, data)
}

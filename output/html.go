package output

import (
	"fmt"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/targodan/go-errors"

	"github.com/kribakarans/pmap"
	"github.com/kribakarans/pmap/procmaps"
)

// segmentColors is the fixed class color table of the HTML report.
var segmentColors = map[procmaps.SegmentClass]string{
	procmaps.ClassCode:    "#4CAF50",
	procmaps.ClassData:    "#2196F3",
	procmaps.ClassRodata:  "#9C27B0",
	procmaps.ClassBss:     "#FF9800",
	procmaps.ClassHeap:    "#F44336",
	procmaps.ClassStack:   "#00BCD4",
	procmaps.ClassAnon:    "#9E9E9E",
	procmaps.ClassVdso:    "#795548",
	procmaps.ClassUnknown: "#607D8B",
}

type htmlSegment struct {
	Region  *procmaps.Region
	Color   string
	Markers []string
}

type htmlData struct {
	Report   *pmap.ReportData
	Segments []htmlSegment
	Legend   []struct {
		Class procmaps.SegmentClass
		Color string
	}
}

var htmlFuncs = template.FuncMap{
	"hex": func(v uint64) string {
		return fmt.Sprintf("0x%08x", v)
	},
	"hexShort": func(v uint64) string {
		return fmt.Sprintf("0x%x", v)
	},
	"bytes": func(v uint64) string {
		return humanize.Comma(int64(v)) + " bytes"
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	},
	"pathOrAnon": pathOrAnon,
}

var htmlTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Process Map Analysis - {{.Report.Metadata.ProcessName}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  padding: 10px; color: #333; font-size: 15px;
}
.container {
  max-width: 1200px; margin: 0 auto; background: white;
  border-radius: 5px; box-shadow: 0 5px 20px rgba(0,0,0,0.2); overflow: hidden;
}
.header {
  background: linear-gradient(135deg, #2c3e50 0%, #34495e 100%);
  color: white; padding: 15px 20px; text-align: center;
}
.header h1 { font-size: 1.8em; margin-bottom: 5px; }
.header .info { font-size: 0.9em; opacity: 0.9; }
.content { padding: 15px; }
.section { margin-bottom: 20px; }
.section-title {
  font-size: 1.4em; color: #2c3e50; border-bottom: 2px solid #3498db;
  padding-bottom: 5px; margin-bottom: 10px;
}
.stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(110px, 1fr)); gap: 8px; }
.stat-card {
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  color: white; padding: 10px; border-radius: 4px;
}
.stat-card h3 { font-size: 0.7em; opacity: 0.9; margin-bottom: 4px; text-transform: uppercase; }
.stat-card .value { font-size: 1.4em; font-weight: bold; }
.memory-container {
  background: white; border: 2px solid #2c3e50; border-radius: 3px;
  overflow: auto; max-height: 600px; font-family: monospace;
}
.segment {
  padding: 3px 12px; font-size: 0.85em; border-bottom: 1px solid #ecf0f1;
  line-height: 1.5; white-space: nowrap; border-left: 14px solid transparent;
}
.segment-addr { display: inline-block; width: 230px; color: #1f2a33; }
.segment-perms { display: inline-block; width: 45px; font-weight: bold; }
.segment-type { display: inline-block; width: 65px; font-weight: 600; }
.crash-marker {
  display: inline-block; padding: 2px 6px; background: #ff0000; border-radius: 3px;
  color: white; font-weight: bold; font-size: 0.8em; margin-left: 6px;
}
.legend { display: grid; grid-template-columns: repeat(3, 1fr); gap: 6px; margin-top: 8px; }
.legend-item { display: flex; align-items: center; gap: 5px; font-size: 0.8em; }
.legend-color { width: 18px; height: 12px; border-radius: 2px; border: 1px solid rgba(0,0,0,0.2); }
.crash-info {
  background: #fff3cd; border-left: 3px solid #ff9800; padding: 8px 10px;
  border-radius: 3px; margin-bottom: 8px;
}
.crash-info h3 { color: #ff6f00; margin-bottom: 6px; font-size: 0.95em; }
.crash-detail { font-family: monospace; background: white; padding: 6px 8px; border-radius: 2px; margin: 3px 0; }
.warning { color: #c0392b; font-weight: bold; }
table { width: 100%; border-collapse: collapse; font-family: monospace; font-size: 0.85em; }
th { background: #2c3e50; color: white; text-align: left; padding: 6px 8px; }
td { padding: 4px 8px; border-bottom: 1px solid #ecf0f1; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>Process Memory Map Analysis</h1>
    <div class="info">
      Process: {{.Report.Metadata.ProcessName}}{{if .Report.Metadata.PID}} | PID: {{.Report.Metadata.PID}}{{end}}
      | Regions: {{.Report.Metadata.RegionCount}}
      | Generated: {{.Report.GeneratedAt.Format "2006-01-02 15:04:05"}}
    </div>
  </div>
  <div class="content">
    <div class="section">
      <div class="section-title">Statistics</div>
      <div class="stats-grid">
        <div class="stat-card"><h3>Total Size</h3><div class="value">{{bytes .Report.Metadata.TotalSize}}</div></div>
        <div class="stat-card"><h3>Regions</h3><div class="value">{{.Report.Metadata.RegionCount}}</div></div>
        {{range .Report.Statistics.Classes}}
        <div class="stat-card"><h3>{{.Class}}</h3><div class="value">{{percent .Percentage}}</div></div>
        {{end}}
      </div>
    </div>

    {{if .Report.CrashResolutions}}
    <div class="section">
      <div class="section-title">Crash Analysis</div>
      {{range .Report.CrashResolutions}}
      <div class="crash-info">
        <h3>{{.Role.Description}} ({{.Role}})</h3>
        <div class="crash-detail">Address: {{hex .Address}}</div>
        {{if .Mapped}}
        <div class="crash-detail">Region: {{.Binary}} [{{.Region.Class}}] {{.Region.Perms}}</div>
        <div class="crash-detail">Offset in region: {{hexShort .Offset}}</div>
        {{if .SymbolizationCommand}}<div class="crash-detail">Debug: <code>{{.SymbolizationCommand}}</code></div>{{end}}
        {{range .Diagnostics}}<div class="crash-detail warning">WARNING: {{.}}</div>{{end}}
        {{else}}
        <div class="crash-detail warning">Address not found in any mapped region!</div>
        {{end}}
      </div>
      {{end}}
    </div>
    {{end}}

    <div class="section">
      <div class="section-title">Memory Layout</div>
      <div class="memory-container">
        {{range .Segments}}
        <div class="segment" style="border-left-color: {{.Color}}">
          <span class="segment-addr">{{hex .Region.Start}}-{{hex .Region.End}}</span>
          <span class="segment-perms">{{.Region.Perms}}</span>
          <span class="segment-type">{{.Region.Class}}</span>
          <span class="segment-path">{{pathOrAnon .Region.Pathname}}</span>
          {{range .Markers}}<span class="crash-marker">{{.}}</span>{{end}}
        </div>
        {{end}}
      </div>
      <div class="legend">
        {{range .Legend}}
        <div class="legend-item">
          <div class="legend-color" style="background: {{.Color}}"></div>
          <div class="legend-text">{{.Class}}</div>
        </div>
        {{end}}
      </div>
    </div>

    <div class="section">
      <div class="section-title">Region Details</div>
      <table>
        <tr><th>Start</th><th>End</th><th>Size</th><th>Perms</th><th>Type</th><th>Mapping</th></tr>
        {{range .Report.Space.Regions}}
        <tr>
          <td>{{hex .Start}}</td><td>{{hex .End}}</td><td>{{bytes .Size}}</td>
          <td>{{.Perms}}</td><td>{{.Class}}</td><td>{{pathOrAnon .Pathname}}</td>
        </tr>
        {{end}}
      </table>
    </div>
  </div>
</div>
</body>
</html>
`))

func buildHTMLData(data *pmap.ReportData) *htmlData {
	hd := &htmlData{Report: data}

	for _, region := range data.Space.Regions() {
		seg := htmlSegment{
			Region: region,
			Color:  segmentColors[region.Class],
		}
		for _, res := range data.CrashResolutions {
			if res.Mapped() && res.Region == region {
				seg.Markers = append(seg.Markers, res.Role.String())
			}
		}
		hd.Segments = append(hd.Segments, seg)
	}

	for _, class := range procmaps.AllSegmentClasses() {
		hd.Legend = append(hd.Legend, struct {
			Class procmaps.SegmentClass
			Color string
		}{class, segmentColors[class]})
	}

	return hd
}

// WriteHTML renders the self-contained HTML report.
func WriteHTML(w io.Writer, data *pmap.ReportData) error {
	err := htmlTemplate.Execute(w, buildHTMLData(data))
	if err != nil {
		return errors.Newf("could not render HTML report, reason: %w", err)
	}
	return nil
}

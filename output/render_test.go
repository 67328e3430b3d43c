package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/kribakarans/pmap"
	"github.com/kribakarans/pmap/procmaps"
)

const renderTestMaps = `00008000-0098b000 r-xp 00000000 b3:04 6081 /usr/bin/amxrt
0214f000-0218a000 rw-p 00000000 00:00 0 [heap]
10000000-10001000 rwxp 00000000 b3:04 7070 /usr/bin/myapp
f79e0000-f79e6000 r-xp 00000000 b3:04 4096 /lib/libubus.so.20230605
ff8a0000-ff8c1000 rw-p 00000000 00:00 0 [stack]
`

func renderTestData(t *testing.T, ctx *pmap.CrashContext) *pmap.ReportData {
	t.Helper()
	space, err := procmaps.Parse(bytes.NewBufferString(renderTestMaps))
	if err != nil {
		t.Fatalf("could not parse test input: %v", err)
	}
	return pmap.Assemble(space, 1234, ctx)
}

func TestRenderConsoleViews(t *testing.T) {
	color.NoColor = true

	pc := uint64(0xf79e245c)
	sp := uint64(0x02160000)
	data := renderTestData(t, &pmap.CrashContext{PC: &pc, SP: &sp})

	Convey("The table view lists every region with metadata", t, func() {
		buf := &bytes.Buffer{}
		RenderTable(buf, data)
		out := buf.String()

		So(out, ShouldContainSubstring, "MEMORY MAP - TABULAR VIEW")
		So(out, ShouldContainSubstring, "Process: amxrt")
		So(out, ShouldContainSubstring, "PID: 1234")
		So(out, ShouldContainSubstring, "/usr/bin/amxrt")
		So(out, ShouldContainSubstring, "[heap]")
		So(out, ShouldContainSubstring, "0x0098b000")
	})

	Convey("The statistics view sums to 100 percent", t, func() {
		buf := &bytes.Buffer{}
		RenderStatistics(buf, data)
		out := buf.String()

		So(out, ShouldContainSubstring, "MEMORY STATISTICS")
		So(out, ShouldContainSubstring, "CODE")
		So(out, ShouldContainSubstring, "HEAP")
		So(out, ShouldContainSubstring, "TOTAL")
		So(out, ShouldContainSubstring, "100.00%")
	})

	Convey("The grouped view buckets regions by binary", t, func() {
		buf := &bytes.Buffer{}
		RenderGrouped(buf, data)
		out := buf.String()

		So(out, ShouldContainSubstring, "GROUPED BY BINARY")
		So(out, ShouldContainSubstring, "/lib/libubus.so.20230605")
		So(out, ShouldContainSubstring, "(1 regions)")
	})

	Convey("The overview box separates stacks, libraries and heap", t, func() {
		buf := &bytes.Buffer{}
		RenderOverview(buf, data)
		out := buf.String()

		So(out, ShouldContainSubstring, "SEGMENT OVERVIEW")
		So(out, ShouldContainSubstring, "Stack")
		So(out, ShouldContainSubstring, "Shared Libs")
		So(out, ShouldContainSubstring, "Heap")
	})

	Convey("The ASCII layout runs from high to low memory with markers", t, func() {
		buf := &bytes.Buffer{}
		RenderASCIILayout(buf, data)
		out := buf.String()

		So(out, ShouldContainSubstring, "High Memory")
		So(out, ShouldContainSubstring, "Low Memory")
		So(out, ShouldContainSubstring, "<- PC")
		So(out, ShouldContainSubstring, "<- SP")
		So(strings.Index(out, "[stack]"), ShouldBeLessThan, strings.Index(out, "[heap]"))
	})

	Convey("The crash analysis prints offsets, commands and warnings", t, func() {
		buf := &bytes.Buffer{}
		RenderCrashAnalysis(buf, data)
		out := buf.String()

		So(out, ShouldContainSubstring, "CRASH CONTEXT ANALYSIS")
		So(out, ShouldContainSubstring, "Program Counter (PC)")
		So(out, ShouldContainSubstring, "Offset in region: 0x245c")
		So(out, ShouldContainSubstring, "addr2line -e /lib/libubus.so.20230605 0x245c")
		So(out, ShouldContainSubstring, "Stack Pointer (SP)")
		So(out, ShouldContainSubstring, "WARNING: stack pointer is not in a stack region")
	})

	Convey("The security view reports the writable+executable region", t, func() {
		buf := &bytes.Buffer{}
		RenderSecurity(buf, data)
		out := buf.String()

		So(out, ShouldContainSubstring, "SECURITY ANALYSIS")
		So(out, ShouldContainSubstring, "WRITABLE+EXECUTABLE:")
		So(out, ShouldContainSubstring, "/usr/bin/myapp")
	})

	Convey("An unmapped register renders an error instead of a region", t, func() {
		bad := uint64(0xdeadbeef)
		unmapped := renderTestData(t, &pmap.CrashContext{PC: &bad})

		buf := &bytes.Buffer{}
		RenderCrashAnalysis(buf, unmapped)
		So(buf.String(), ShouldContainSubstring, "Address not found in any mapped region!")
	})

	Convey("A clean layout renders the all-clear", t, func() {
		input := "00400000-00401000 r-xp 00000000 08:01 1 /usr/bin/clean\n"
		space, err := procmaps.Parse(bytes.NewBufferString(input))
		So(err, ShouldBeNil)

		buf := &bytes.Buffer{}
		RenderSecurity(buf, pmap.Assemble(space, 0, nil))
		So(buf.String(), ShouldContainSubstring, "No suspicious writable+executable regions found.")
	})
}

func TestRenderAll(t *testing.T) {
	color.NoColor = true

	Convey("RenderAll emits every section", t, func() {
		pc := uint64(0xf79e245c)
		data := renderTestData(t, &pmap.CrashContext{PC: &pc})

		buf := &bytes.Buffer{}
		RenderAll(buf, data)
		out := buf.String()

		for _, section := range []string{
			"MEMORY MAP - TABULAR VIEW",
			"MEMORY STATISTICS",
			"GROUPED BY BINARY",
			"ASCII VISUALIZATION",
			"CRASH CONTEXT ANALYSIS",
			"SECURITY ANALYSIS",
		} {
			So(out, ShouldContainSubstring, section)
		}
	})

	Convey("Without a crash context the crash section is absent", t, func() {
		data := renderTestData(t, nil)

		buf := &bytes.Buffer{}
		RenderAll(buf, data)
		So(buf.String(), ShouldNotContainSubstring, "CRASH CONTEXT ANALYSIS")
	})
}

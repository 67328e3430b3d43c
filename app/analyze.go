package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/targodan/go-errors"
	"github.com/urfave/cli/v2"

	"github.com/kribakarans/pmap"
	"github.com/kribakarans/pmap/output"
	"github.com/kribakarans/pmap/procmaps"
)

var analyzeFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "pid",
		Usage: "read /proc/<pid>/maps of a live process instead of a file",
	},
	&cli.BoolFlag{
		Name:  "report",
		Usage: "show all reports (default if no selector is given)",
	},
	&cli.BoolFlag{
		Name:  "table",
		Usage: "show the memory map table view",
	},
	&cli.BoolFlag{
		Name:  "stats",
		Usage: "show memory statistics",
	},
	&cli.BoolFlag{
		Name:  "grouped",
		Usage: "show the memory map grouped by binary",
	},
	&cli.BoolFlag{
		Name:  "segments",
		Usage: "show the segment overview box",
	},
	&cli.BoolFlag{
		Name:  "ascii",
		Usage: "show the ASCII memory layout",
	},
	&cli.BoolFlag{
		Name:  "security",
		Usage: "show the security analysis",
	},
	&cli.StringFlag{
		Name:  "pc",
		Usage: "program counter address at crash time (hex)",
	},
	&cli.StringFlag{
		Name:  "lr",
		Usage: "link register address at crash time (hex)",
	},
	&cli.StringFlag{
		Name:  "sp",
		Usage: "stack pointer address at crash time (hex)",
	},
	&cli.StringFlag{
		Name:  "fp",
		Usage: "frame pointer address at crash time (hex)",
	},
	&cli.StringSliceFlag{
		Name:  "bt",
		Usage: "backtrace address to resolve (hex), may be given multiple times",
	},
	&cli.StringFlag{
		Name:  "html",
		Usage: "write the HTML report to the given file, or \"-\" for stdout",
	},
	&cli.BoolFlag{
		Name:  "json",
		Usage: "print the report data as JSON instead of console reports",
	},
	&cli.BoolFlag{
		Name:  "compress",
		Usage: "zstd-compress the HTML report",
	},
	&cli.StringFlag{
		Name:  "filter-permissions",
		Usage: "show only regions with at least the given permissions, e.g. \"wx\"",
	},
	&cli.StringSliceFlag{
		Name:  "filter-class",
		Usage: "show only regions of the given class, e.g. \"CODE\", may be given multiple times",
	},
	&cli.StringFlag{
		Name:  "filter-size-min",
		Usage: "show only regions of at least the given size, e.g. \"4KB\"",
	},
	&cli.StringFlag{
		Name:  "filter-size-max",
		Usage: "show only regions of at most the given size",
	},
}

func filterFromArgs(c *cli.Context) (pmap.RegionFilter, error) {
	filters := make([]pmap.RegionFilter, 0, 4)

	if c.IsSet("filter-permissions") {
		f, err := pmap.NewPermissionsFilter(c.String("filter-permissions"))
		if err != nil {
			return nil, errors.Newf("invalid flag \"--filter-permissions\", reason: %w", err)
		}
		filters = append(filters, f)
	}
	if c.IsSet("filter-class") {
		f, err := pmap.NewClassFilter(c.StringSlice("filter-class"))
		if err != nil {
			return nil, errors.Newf("invalid flag \"--filter-class\", reason: %w", err)
		}
		filters = append(filters, f)
	}
	if c.IsSet("filter-size-min") {
		size, err := humanize.ParseBytes(c.String("filter-size-min"))
		if err != nil {
			return nil, errors.Newf("invalid flag \"--filter-size-min\", reason: %w", err)
		}
		filters = append(filters, pmap.NewMinSizeFilter(size))
	}
	if c.IsSet("filter-size-max") {
		size, err := humanize.ParseBytes(c.String("filter-size-max"))
		if err != nil {
			return nil, errors.Newf("invalid flag \"--filter-size-max\", reason: %w", err)
		}
		filters = append(filters, pmap.NewMaxSizeFilter(size))
	}

	if len(filters) == 0 {
		return nil, nil
	}
	return pmap.NewAndFilter(filters...), nil
}

func crashContextFromArgs(c *cli.Context) (*pmap.CrashContext, error) {
	ctx := &pmap.CrashContext{}

	registers := []struct {
		flag   string
		target **uint64
	}{
		{"pc", &ctx.PC},
		{"lr", &ctx.LR},
		{"sp", &ctx.SP},
		{"fp", &ctx.FP},
	}
	for _, reg := range registers {
		if !c.IsSet(reg.flag) {
			continue
		}
		value, err := pmap.ParseRegisterValue(c.String(reg.flag))
		if err != nil {
			return nil, errors.Newf("invalid flag \"--%s\", reason: %w", reg.flag, err)
		}
		*reg.target = &value
	}

	for _, s := range c.StringSlice("bt") {
		value, err := pmap.ParseRegisterValue(s)
		if err != nil {
			return nil, errors.Newf("invalid flag \"--bt\", reason: %w", err)
		}
		ctx.Backtrace = append(ctx.Backtrace, value)
	}

	if ctx.IsEmpty() {
		return nil, nil
	}
	return ctx, nil
}

func loadAddressSpace(c *cli.Context) (*procmaps.AddressSpace, int, error) {
	if c.IsSet("pid") {
		pid := c.Int("pid")
		space, err := procmaps.ParseProcess(pid)
		if err != nil {
			return nil, 0, errors.Newf("could not read maps of process %d, reason: %w", pid, err)
		}
		return space, pid, nil
	}

	if c.NArg() != 1 {
		return nil, 0, errors.Newf("expected exactly one argument <mapsfile>, got %d", c.NArg())
	}
	space, err := procmaps.ParseFile(c.Args().First())
	if err != nil {
		return nil, 0, err
	}
	return space, 0, nil
}

func writeHTMLReport(c *cli.Context, data *pmap.ReportData) error {
	var out io.WriteCloser
	if c.String("html") == "-" {
		out = output.NewNopWriteCloser(os.Stdout)
	} else {
		path := c.String("html")
		if c.Bool("compress") {
			path += output.ZSTDFileExtension
		}
		file, err := os.Create(path)
		if err != nil {
			return errors.Newf("could not create HTML report file, reason: %w", err)
		}
		out = file
	}

	if c.Bool("compress") {
		out = output.NewZSTDCompressor(out)
	}

	err := output.WriteHTML(out, data)
	return errors.NewMultiError(err, out.Close())
}

func analyze(c *cli.Context) error {
	err := initAppAction(c)
	if err != nil {
		return err
	}

	crashCtx, err := crashContextFromArgs(c)
	if err != nil {
		return err
	}

	filter, err := filterFromArgs(c)
	if err != nil {
		return err
	}

	space, pid, err := loadAddressSpace(c)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"regions": space.Len(),
		"pid":     pid,
	}).Debug("Parsed memory map.")

	data := pmap.Assemble(space, pid, crashCtx)

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	if c.IsSet("html") {
		err = writeHTMLReport(c, data)
		if err != nil {
			return err
		}
		if path := c.String("html"); path != "-" {
			if c.Bool("compress") {
				path += output.ZSTDFileExtension
			}
			abs, _ := filepath.Abs(path)
			fmt.Printf("HTML report saved to: %s\n", abs)
		}
		return nil
	}

	if filter != nil {
		output.RenderFilteredTable(os.Stdout, data, filter)
		return nil
	}

	showTable := c.Bool("table")
	showStats := c.Bool("stats")
	showGrouped := c.Bool("grouped")
	showSegments := c.Bool("segments")
	showASCII := c.Bool("ascii")
	showSecurity := c.Bool("security")
	hasCrash := crashCtx != nil

	anySelector := showTable || showStats || showGrouped || showSegments ||
		showASCII || showSecurity || hasCrash
	if c.Bool("report") || !anySelector {
		output.RenderAll(os.Stdout, data)
		return nil
	}

	if showTable {
		output.RenderTable(os.Stdout, data)
	}
	if showStats {
		output.RenderStatistics(os.Stdout, data)
	}
	if showGrouped {
		output.RenderGrouped(os.Stdout, data)
	}
	if showSegments {
		output.RenderOverview(os.Stdout, data)
	}
	if showASCII {
		output.RenderASCIILayout(os.Stdout, data)
	}
	if hasCrash {
		output.RenderCrashAnalysis(os.Stdout, data)
	}
	if showSecurity {
		output.RenderSecurity(os.Stdout, data)
	}

	return nil
}

package procmaps

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/targodan/go-errors"
)

// Sentinel reasons for parse failures. A *ParseError wraps exactly one
// of these, check with errors.Is.
var (
	// ErrMalformedLine means a line does not match the maps grammar.
	ErrMalformedLine = errors.New("malformed line")
	// ErrInvalidRange means the start address is not below the end address.
	ErrInvalidRange = errors.New("invalid address range")
	// ErrInvalidPermissions means the permission string is not of the
	// form [r-][w-][x-][ps].
	ErrInvalidPermissions = errors.New("invalid permissions")
	// ErrOutOfOrder means a region starts below the preceding one.
	ErrOutOfOrder = errors.New("regions out of order")
	// ErrOverlapsPrevious means a region overlaps the preceding one.
	ErrOverlapsPrevious = errors.New("region overlaps previous")
)

// ParseError is the fatal result of parsing an invalid maps snapshot.
// No partial address space is ever produced alongside it.
type ParseError struct {
	// Line is the 1-based line number of the offending input line.
	Line int
	// Field names the offending field where known, e.g. "permissions".
	Field string
	// Reason wraps one of the sentinel reasons above, possibly with
	// additional detail.
	Reason error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: field %s: %v", e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}

func parseErrorf(line int, field string, reason error, format string, args ...interface{}) *ParseError {
	detail := fmt.Sprintf(format, args...)
	if detail != "" {
		reason = errors.Newf("%s: %w", detail, reason)
	}
	return &ParseError{Line: line, Field: field, Reason: reason}
}

// splitLine splits one maps line into the five fixed fields and the
// pathname. The pathname is everything after the fifth whitespace run,
// trimmed, it may contain embedded spaces.
func splitLine(line string) (fields [5]string, pathname string, ok bool) {
	rest := line
	for i := 0; i < 5; i++ {
		rest = strings.TrimLeft(rest, " \t")
		cut := strings.IndexAny(rest, " \t")
		if cut < 0 {
			if i < 4 || rest == "" {
				return fields, "", false
			}
			cut = len(rest)
		}
		fields[i] = rest[:cut]
		rest = rest[cut:]
	}
	return fields, strings.TrimSpace(rest), true
}

func parseLine(lineNo int, line string) (*Region, *ParseError) {
	fields, pathname, ok := splitLine(line)
	if !ok {
		return nil, parseErrorf(lineNo, "", ErrMalformedLine, "expected at least 5 fields")
	}

	addr := strings.SplitN(fields[0], "-", 2)
	if len(addr) != 2 {
		return nil, parseErrorf(lineNo, "address", ErrMalformedLine, "address is not of format \"<hex>-<hex>\"")
	}
	start, err := strconv.ParseUint(addr[0], 16, 64)
	if err != nil {
		return nil, parseErrorf(lineNo, "address", ErrMalformedLine, "start address %q is not 64-bit hex", addr[0])
	}
	end, err := strconv.ParseUint(addr[1], 16, 64)
	if err != nil {
		return nil, parseErrorf(lineNo, "address", ErrMalformedLine, "end address %q is not 64-bit hex", addr[1])
	}

	offset, err := strconv.ParseUint(fields[2], 16, 64)
	if err != nil {
		return nil, parseErrorf(lineNo, "offset", ErrMalformedLine, "offset %q is not hex", fields[2])
	}

	dev := strings.SplitN(fields[3], ":", 2)
	if len(dev) != 2 {
		return nil, parseErrorf(lineNo, "device", ErrMalformedLine, "device is not of format \"<major>:<minor>\"")
	}
	major, err := strconv.ParseUint(dev[0], 16, 64)
	if err != nil {
		return nil, parseErrorf(lineNo, "device", ErrMalformedLine, "major number %q is not hex", dev[0])
	}
	minor, err := strconv.ParseUint(dev[1], 16, 64)
	if err != nil {
		return nil, parseErrorf(lineNo, "device", ErrMalformedLine, "minor number %q is not hex", dev[1])
	}

	inode, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return nil, parseErrorf(lineNo, "inode", ErrMalformedLine, "inode %q is not decimal", fields[4])
	}

	region, err := NewRegion(start, end, fields[1], offset, Device{Major: major, Minor: minor}, inode, pathname)
	if err != nil {
		field := "address"
		if errors.Is(err, ErrInvalidPermissions) {
			field = "permissions"
		}
		return nil, &ParseError{Line: lineNo, Field: field, Reason: err}
	}
	return region, nil
}

// Parse reads a /proc/<pid>/maps snapshot line by line and returns the
// fully validated AddressSpace. Empty lines and comment lines starting
// with '#' (as found in captured dumps) are skipped. Any other line
// that does not match the maps grammar aborts the parse, no partial
// result is produced.
func Parse(r io.Reader) (*AddressSpace, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	regions := make([]*Region, 0, 64)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		region, perr := parseLine(lineNo, line)
		if perr != nil {
			return nil, perr
		}

		if len(regions) > 0 {
			prev := regions[len(regions)-1]
			if region.Start < prev.Start {
				return nil, &ParseError{Line: lineNo, Reason: ErrOutOfOrder}
			}
			if region.Start < prev.End {
				return nil, &ParseError{Line: lineNo, Reason: ErrOverlapsPrevious}
			}
		}
		regions = append(regions, region)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Newf("could not read maps data: %w", err)
	}

	return newAddressSpace(regions), nil
}

package procmaps

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/targodan/go-errors"
)

func TestParsePermissions(t *testing.T) {
	Convey("Valid permission strings should parse", t, func() {
		perms, err := ParsePermissions("r-xp")
		So(err, ShouldBeNil)
		So(perms, ShouldResemble, Permissions{Read: true, Execute: true, Sharing: SharingPrivate})

		perms, err = ParsePermissions("rw-s")
		So(err, ShouldBeNil)
		So(perms, ShouldResemble, Permissions{Read: true, Write: true, Sharing: SharingShared})

		perms, err = ParsePermissions("---p")
		So(err, ShouldBeNil)
		So(perms, ShouldResemble, Permissions{Sharing: SharingPrivate})
	})

	Convey("Invalid permission strings should error", t, func() {
		cases := []string{"", "r-x", "r-xpp", "x-xp", "rwx-", "RWXP", "rwzp", "----"}
		for _, c := range cases {
			_, err := ParsePermissions(c)
			So(err, ShouldNotBeNil)
		}
	})

	Convey("String should render the kernel form", t, func() {
		perms, err := ParsePermissions("rwxp")
		So(err, ShouldBeNil)
		So(perms.String(), ShouldEqual, "rwxp")

		perms, err = ParsePermissions("r--s")
		So(err, ShouldBeNil)
		So(perms.String(), ShouldEqual, "r--s")
	})
}

func TestNewRegion(t *testing.T) {
	Convey("A valid region should be constructed with its class", t, func() {
		region, err := NewRegion(0x0098b000, 0x0098c000, "r-xp", 0, Device{Major: 0xb3, Minor: 0x04}, 6081, "/usr/bin/amxrt")
		So(err, ShouldBeNil)
		So(region.Start, ShouldEqual, 0x0098b000)
		So(region.End, ShouldEqual, 0x0098c000)
		So(region.Size(), ShouldEqual, 4096)
		So(region.Perms.String(), ShouldEqual, "r-xp")
		So(region.Dev, ShouldResemble, Device{Major: 0xb3, Minor: 0x04})
		So(region.Inode, ShouldEqual, 6081)
		So(region.Pathname, ShouldEqual, "/usr/bin/amxrt")
		So(region.Class, ShouldEqual, ClassCode)
	})

	Convey("An inverted or empty address range should be rejected", t, func() {
		_, err := NewRegion(0x2000, 0x1000, "r--p", 0, Device{}, 0, "")
		So(errors.Is(err, ErrInvalidRange), ShouldBeTrue)

		_, err = NewRegion(0x1000, 0x1000, "r--p", 0, Device{}, 0, "")
		So(errors.Is(err, ErrInvalidRange), ShouldBeTrue)
	})

	Convey("Bad permissions should be rejected", t, func() {
		_, err := NewRegion(0x1000, 0x2000, "r-x", 0, Device{}, 0, "")
		So(errors.Is(err, ErrInvalidPermissions), ShouldBeTrue)
	})
}

func TestRegionPredicates(t *testing.T) {
	Convey("Predicates should reflect permissions and backing", t, func() {
		region, err := NewRegion(0x1000, 0x2000, "rw-p", 0, Device{}, 0, "")
		So(err, ShouldBeNil)
		So(region.IsReadable(), ShouldBeTrue)
		So(region.IsWritable(), ShouldBeTrue)
		So(region.IsExecutable(), ShouldBeFalse)
		So(region.IsPrivate(), ShouldBeTrue)
		So(region.IsShared(), ShouldBeFalse)
		So(region.IsAnonymous(), ShouldBeTrue)
		So(region.IsPseudo(), ShouldBeFalse)
		So(region.IsFileBacked(), ShouldBeFalse)

		heap, err := NewRegion(0x1000, 0x2000, "rw-p", 0, Device{}, 0, "[heap]")
		So(err, ShouldBeNil)
		So(heap.IsAnonymous(), ShouldBeFalse)
		So(heap.IsPseudo(), ShouldBeTrue)
		So(heap.IsFileBacked(), ShouldBeFalse)

		lib, err := NewRegion(0x1000, 0x2000, "r-xs", 0x1000, Device{Major: 8, Minor: 1}, 42, "/lib/libc.so.6")
		So(err, ShouldBeNil)
		So(lib.IsShared(), ShouldBeTrue)
		So(lib.IsPrivate(), ShouldBeFalse)
		So(lib.IsFileBacked(), ShouldBeTrue)
	})
}

func TestRegionRoundTrip(t *testing.T) {
	Convey("Serializing a region and re-parsing yields an equal region", t, func() {
		lines := []string{
			"0098b000-0098c000 r-xp 00000000 b3:04 6081 /usr/bin/amxrt",
			"0214f000-0218a000 rw-p 00000000 00:00 0 [heap]",
			"f79e0000-f79e6000 r-xp 00000000 b3:04 4096 /lib/my lib with spaces.so",
		}
		for _, line := range lines {
			region, perr := parseLine(1, line)
			So(perr, ShouldBeNil)

			again, perr := parseLine(1, region.String())
			So(perr, ShouldBeNil)
			So(again, ShouldResemble, region)
		}
	})
}

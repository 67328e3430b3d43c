package pmap

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAssemble(t *testing.T) {
	space := parseCrashTestSpace(t)

	Convey("Assemble without crash context", t, func() {
		data := Assemble(space, 42, nil)

		So(data.Space, ShouldPointTo, space)
		So(data.Metadata.PID, ShouldEqual, 42)
		So(data.Statistics.RegionCount, ShouldEqual, space.Len())
		So(data.Groups, ShouldNotBeEmpty)
		So(data.SecurityFindings, ShouldHaveLength, 1)
		So(data.CrashResolutions, ShouldBeNil)
		So(data.HasCrashContext(), ShouldBeFalse)
		So(data.GeneratedAt.IsZero(), ShouldBeFalse)
	})

	Convey("Assemble with crash context", t, func() {
		ctx := &CrashContext{
			PC:        addr(0xf79e245c),
			SP:        addr(0x02160000),
			Backtrace: []uint64{0x00008123},
		}
		data := Assemble(space, 0, ctx)

		So(data.HasCrashContext(), ShouldBeTrue)
		So(data.CrashResolutions, ShouldHaveLength, 2)
		So(data.CrashResolutions[0].Role, ShouldEqual, RolePC)
		So(data.CrashResolutions[1].Role, ShouldEqual, RoleSP)
		So(data.Backtrace, ShouldHaveLength, 1)
	})

	Convey("Report data serializes to JSON", t, func() {
		ctx := &CrashContext{PC: addr(0xf79e245c)}
		data := Assemble(space, 7, ctx)

		raw, err := json.Marshal(data)
		So(err, ShouldBeNil)

		var decoded map[string]interface{}
		So(json.Unmarshal(raw, &decoded), ShouldBeNil)
		So(decoded["metadata"], ShouldNotBeNil)
		So(decoded["regions"], ShouldNotBeNil)
		So(decoded["crashResolutions"], ShouldNotBeNil)
	})
}

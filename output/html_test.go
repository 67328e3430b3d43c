package output

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/kribakarans/pmap"
)

func TestWriteHTML(t *testing.T) {
	pc := uint64(0xf79e245c)
	data := renderTestData(t, &pmap.CrashContext{PC: &pc})

	Convey("The HTML report is self-contained and marks the crash", t, func() {
		buf := &bytes.Buffer{}
		So(WriteHTML(buf, data), ShouldBeNil)
		out := buf.String()

		So(out, ShouldContainSubstring, "<!DOCTYPE html>")
		So(out, ShouldContainSubstring, "Process Map Analysis - amxrt")
		So(out, ShouldContainSubstring, "/lib/libubus.so.20230605")
		So(out, ShouldContainSubstring, `<span class="crash-marker">PC</span>`)
		So(out, ShouldContainSubstring, "addr2line -e /lib/libubus.so.20230605 0x245c")
		So(out, ShouldContainSubstring, "#4CAF50") // code segment color
	})

	Convey("Without a crash context no markers are rendered", t, func() {
		buf := &bytes.Buffer{}
		So(WriteHTML(buf, renderTestData(t, nil)), ShouldBeNil)
		So(buf.String(), ShouldNotContainSubstring, `<span class="crash-marker">`)
	})
}

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closableBuffer) Close() error {
	b.closed = true
	return nil
}

func TestZSTDCompressor(t *testing.T) {
	Convey("Compressed output decompresses to the original bytes", t, func() {
		buf := &closableBuffer{}
		wc := NewZSTDCompressor(buf)

		payload := []byte("<html>pmap report</html>")
		_, err := wc.Write(payload)
		So(err, ShouldBeNil)
		So(wc.Close(), ShouldBeNil)
		So(buf.closed, ShouldBeTrue)

		dec, err := zstd.NewReader(bytes.NewReader(buf.Bytes()))
		So(err, ShouldBeNil)
		defer dec.Close()

		plain, err := io.ReadAll(dec.IOReadCloser())
		So(err, ShouldBeNil)
		So(plain, ShouldResemble, payload)
	})
}

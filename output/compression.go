package output

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/targodan/go-errors"
)

// ZSTDFileExtension is appended to output file names when compression
// is enabled.
const ZSTDFileExtension = ".zst"

type compressedWriteCloser struct {
	writer io.WriteCloser
	base   io.Closer
}

func (w *compressedWriteCloser) Write(p []byte) (n int, err error) {
	return w.writer.Write(p)
}

func (w *compressedWriteCloser) Close() error {
	err := w.writer.Close()
	return errors.NewMultiError(err, w.base.Close())
}

// NewZSTDCompressor wraps out so that everything written is zstd
// compressed. Closing the returned writer flushes the compressor and
// closes out.
func NewZSTDCompressor(out io.WriteCloser) io.WriteCloser {
	zstdWriter, err := zstd.NewWriter(out)
	if err != nil {
		// This should only happen if we (the dev) screw up with the options
		panic(err)
	}
	return &compressedWriteCloser{
		writer: zstdWriter,
		base:   out,
	}
}

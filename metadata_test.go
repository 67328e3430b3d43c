package pmap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kribakarans/pmap/procmaps"
)

func TestExtractMetadata(t *testing.T) {
	space := parseCrashTestSpace(t)

	meta := ExtractMetadata(space, 1234)
	assert.Equal(t, "amxrt", meta.ProcessName)
	assert.Equal(t, 1234, meta.PID)
	assert.Equal(t, space.Len(), meta.RegionCount)
	assert.Equal(t, space.TotalSize(), meta.TotalSize)
	assert.Equal(t, space.LowAddress(), meta.LowAddress)
	assert.Equal(t, space.HighAddress(), meta.HighAddress)

	assert.Equal(t, "/usr/bin/amxrt", MainBinaryPath(space, meta))
}

func TestExtractMetadataNoCodeRegion(t *testing.T) {
	input := `0214f000-0218a000 rw-p 00000000 00:00 0 [heap]
ff8a0000-ff8c1000 rw-p 00000000 00:00 0 [stack]
`
	space, err := procmaps.Parse(bytes.NewBufferString(input))
	require.NoError(t, err)

	meta := ExtractMetadata(space, 0)
	assert.Equal(t, UnknownProcessName, meta.ProcessName)
	assert.Zero(t, meta.PID)
	assert.Empty(t, MainBinaryPath(space, meta))
}

func TestExtractMetadataSkipsPseudoCode(t *testing.T) {
	// The vdso is executable but pseudo, the library is the first
	// real code region.
	input := `00008000-00009000 r-xp 00000000 00:00 0 [vectors]
f79e0000-f79e6000 r-xp 00000000 b3:04 4096 /lib/libubus.so.20230605
`
	space, err := procmaps.Parse(bytes.NewBufferString(input))
	require.NoError(t, err)

	meta := ExtractMetadata(space, 0)
	assert.Equal(t, "libubus.so.20230605", meta.ProcessName)
}

func TestExtractMetadataEmpty(t *testing.T) {
	space, err := procmaps.Parse(bytes.NewBufferString(""))
	require.NoError(t, err)

	meta := ExtractMetadata(space, 0)
	assert.Equal(t, UnknownProcessName, meta.ProcessName)
	assert.Zero(t, meta.RegionCount)
	assert.Zero(t, meta.TotalSize)
}

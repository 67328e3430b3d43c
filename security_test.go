package pmap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kribakarans/pmap/procmaps"
)

func TestAuditSecurity(t *testing.T) {
	space := parseCrashTestSpace(t)

	findings := AuditSecurity(space)
	require.Len(t, findings, 1)
	assert.Equal(t, "/usr/bin/myapp", findings[0].Region.Pathname)
	assert.Equal(t, "rwxp", findings[0].Region.Perms.String())
	assert.Equal(t, findings[0].Region, space.At(findings[0].RegionIndex))

	assert.True(t, HasWritableExecutable(space))
}

func TestAuditSecurityCleanLayout(t *testing.T) {
	input := `00400000-00401000 r-xp 00000000 08:01 1 /usr/bin/clean
00401000-00402000 rw-p 00001000 08:01 1 /usr/bin/clean
00500000-00501000 rw-s 00000000 00:00 0
`
	space, err := procmaps.Parse(bytes.NewBufferString(input))
	require.NoError(t, err)

	assert.Empty(t, AuditSecurity(space))
	assert.False(t, HasWritableExecutable(space))
}

func TestAuditSecurityAnonymousWX(t *testing.T) {
	// Sharing and backing do not matter, only write+execute does.
	input := "00400000-00401000 rwxs 00000000 00:00 0\n"
	space, err := procmaps.Parse(bytes.NewBufferString(input))
	require.NoError(t, err)

	findings := AuditSecurity(space)
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Region.IsAnonymous())
}

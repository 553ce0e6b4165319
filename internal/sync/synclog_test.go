package sync

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLog_AppendAndRead(t *testing.T) {
	mount := t.TempDir()
	require.NoError(t, os.MkdirAll(BookkeepingDir(mount), 0o755))

	require.NoError(t, AppendSyncLog(mount, "alpha", 3))
	require.NoError(t, AppendSyncLog(mount, "beta", 1))

	lines, err := ReadSyncLog(mount, 0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "machine=alpha actions=3")
	assert.Contains(t, lines[1], "machine=beta actions=1")
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} UTC\]`, lines[0])
}

func TestSyncLog_ReadLimitKeepsMostRecent(t *testing.T) {
	mount := t.TempDir()
	require.NoError(t, os.MkdirAll(BookkeepingDir(mount), 0o755))

	for i := 0; i < 5; i++ {
		require.NoError(t, AppendSyncLog(mount, "alpha", i))
	}

	lines, err := ReadSyncLog(mount, 2)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "actions=3")
	assert.Contains(t, lines[1], "actions=4")
}

func TestSyncLog_ReadMissingLogIsEmpty(t *testing.T) {
	lines, err := ReadSyncLog(t.TempDir(), 20)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

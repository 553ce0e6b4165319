package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(hash string) *FileEntry {
	return &FileEntry{Size: 100, Mtime: 1000, Hash: hash}
}

func TestComputeChanges_Added(t *testing.T) {
	base := NewSnapshot("f", "m")
	current := NewSnapshot("f", "m")
	current.Files["new.txt"] = entry("blake3:01")

	changes := ComputeChanges(base, current)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeAdded, changes[0].Kind)
	assert.Equal(t, "new.txt", changes[0].Path)
	require.NotNil(t, changes[0].Entry)
	assert.Equal(t, "blake3:01", changes[0].Entry.Hash)
}

func TestComputeChanges_Deleted(t *testing.T) {
	base := NewSnapshot("f", "m")
	base.Files["old.txt"] = entry("blake3:01")
	current := NewSnapshot("f", "m")

	changes := ComputeChanges(base, current)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeDeleted, changes[0].Kind)
	assert.Nil(t, changes[0].Entry)
}

func TestComputeChanges_Modified(t *testing.T) {
	base := NewSnapshot("f", "m")
	base.Files["file.txt"] = entry("blake3:01")
	current := NewSnapshot("f", "m")
	current.Files["file.txt"] = entry("blake3:02")

	changes := ComputeChanges(base, current)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeModified, changes[0].Kind)
}

func TestComputeChanges_HashIsSoleIdentity(t *testing.T) {
	// Same hash with different size/mtime is not a modification.
	base := NewSnapshot("f", "m")
	base.Files["file.txt"] = &FileEntry{Size: 100, Mtime: 1000, Hash: "blake3:01"}
	current := NewSnapshot("f", "m")
	current.Files["file.txt"] = &FileEntry{Size: 200, Mtime: 2000, Hash: "blake3:01"}

	assert.Empty(t, ComputeChanges(base, current))
}

func TestComputeChanges_SortedByPath(t *testing.T) {
	base := NewSnapshot("f", "m")
	base.Files["z.txt"] = entry("blake3:01")
	current := NewSnapshot("f", "m")
	current.Files["a.txt"] = entry("blake3:02")
	current.Files["m.txt"] = entry("blake3:03")

	changes := ComputeChanges(base, current)
	require.Len(t, changes, 3)
	assert.Equal(t, "a.txt", changes[0].Path)
	assert.Equal(t, "m.txt", changes[1].Path)
	assert.Equal(t, "z.txt", changes[2].Path)
}

package sync

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root string, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanner_Scan_Basic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")
	writeFile(t, root, "dir/b.txt", "world")

	sc := &Scanner{}
	snap, err := sc.Scan(root, "folder", "alpha", nil)
	require.NoError(t, err)

	require.Len(t, snap.Files, 2)
	a := snap.Files["a.txt"]
	require.NotNil(t, a)
	assert.Equal(t, int64(5), a.Size)
	assert.Contains(t, a.Hash, "blake3:")
	assert.False(t, a.IsDir)

	// "dir" holds a file, so it gets no placeholder entry.
	assert.NotContains(t, snap.Files, "dir")
	assert.Contains(t, snap.Files, "dir/b.txt")
}

func TestScanner_Scan_EmptyDirPlaceholders(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "nested"), 0o755))
	writeFile(t, root, "full/c.txt", "x")

	sc := &Scanner{}
	snap, err := sc.Scan(root, "folder", "alpha", nil)
	require.NoError(t, err)

	// Both levels of the file-less subtree become placeholders.
	require.Contains(t, snap.Files, "empty")
	require.Contains(t, snap.Files, "empty/nested")
	assert.True(t, snap.Files["empty"].IsDir)
	assert.Equal(t, EmptyDirHash, snap.Files["empty"].Hash)
	assert.Zero(t, snap.Files["empty"].Size)
	assert.Zero(t, snap.Files["empty"].Mtime)

	assert.NotContains(t, snap.Files, "full")
}

func TestScanner_Scan_IgnorePrunesSubtree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.txt", "k")
	writeFile(t, root, "node_modules/dep/index.js", "j")
	writeFile(t, root, "src/node_modules/other.js", "j")
	writeFile(t, root, "junk.tmp", "t")

	sc := &Scanner{Ignore: NewIgnoreList([]string{"node_modules", "*.tmp"})}
	snap, err := sc.Scan(root, "folder", "alpha", nil)
	require.NoError(t, err)

	assert.Contains(t, snap.Files, "keep.txt")
	for path := range snap.Files {
		assert.NotContains(t, path, "node_modules")
		assert.NotContains(t, path, ".tmp")
	}
	// Pruned directories leave no empty-dir placeholder behind either.
	assert.NotContains(t, snap.Files, "src")
}

func TestScanner_Scan_HashReuseOnUnchangedMeta(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.txt", "hello")

	sc := &Scanner{}
	first, err := sc.Scan(root, "folder", "alpha", nil)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)

	// A base entry with matching size+mtime must short-circuit hashing, even
	// though its recorded digest does not match the bytes on disk.
	base := NewSnapshot("folder", "alpha")
	base.Files["a.txt"] = &FileEntry{
		Size:  info.Size(),
		Mtime: info.ModTime().Unix(),
		Hash:  "blake3:cafe",
	}

	second, err := sc.Scan(root, "folder", "alpha", base)
	require.NoError(t, err)
	assert.Equal(t, "blake3:cafe", second.Files["a.txt"].Hash)
	assert.NotEqual(t, first.Files["a.txt"].Hash, second.Files["a.txt"].Hash)
}

func TestScanner_Scan_RehashOnChangedMtime(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.txt", "hello")

	info, err := os.Stat(path)
	require.NoError(t, err)

	base := NewSnapshot("folder", "alpha")
	base.Files["a.txt"] = &FileEntry{
		Size:  info.Size(),
		Mtime: info.ModTime().Unix(),
		Hash:  "blake3:cafe",
	}

	newTime := info.ModTime().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	sc := &Scanner{}
	snap, err := sc.Scan(root, "folder", "alpha", base)
	require.NoError(t, err)
	assert.NotEqual(t, "blake3:cafe", snap.Files["a.txt"].Hash)
	assert.Contains(t, snap.Files["a.txt"].Hash, "blake3:")
}

func TestScanner_Scan_RootErrors(t *testing.T) {
	sc := &Scanner{}

	_, err := sc.Scan(filepath.Join(t.TempDir(), "missing"), "f", "m", nil)
	assert.ErrorIs(t, err, ErrRootNotFound)

	file := writeFile(t, t.TempDir(), "not-a-dir", "x")
	_, err = sc.Scan(file, "f", "m", nil)
	assert.ErrorIs(t, err, ErrRootNotDir)
}

func TestScanner_Scan_SkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	root := t.TempDir()
	target := writeFile(t, root, "real.txt", "x")
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.txt")))

	sc := &Scanner{}
	snap, err := sc.Scan(root, "f", "m", nil)
	require.NoError(t, err)
	assert.Contains(t, snap.Files, "real.txt")
	assert.NotContains(t, snap.Files, "link.txt")
}

func TestScanner_ScanPair(t *testing.T) {
	local := t.TempDir()
	drive := t.TempDir()
	writeFile(t, local, "l.txt", "local")
	writeFile(t, drive, "d.txt", "drive")

	sc := &Scanner{}
	localSnap, driveSnap, err := sc.ScanPair(context.Background(), local, drive, "f", "m", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, localSnap.Files, "l.txt")
	assert.Contains(t, driveSnap.Files, "d.txt")
}

func TestScanner_ScanPair_FailsWhenEitherFails(t *testing.T) {
	local := t.TempDir()
	writeFile(t, local, "l.txt", "local")

	sc := &Scanner{}
	_, _, err := sc.ScanPair(context.Background(), local, filepath.Join(local, "missing"), "f", "m", nil, nil)
	assert.ErrorIs(t, err, ErrRootNotFound)
}

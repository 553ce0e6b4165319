package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	ErrRootNotFound = errors.New("root directory does not exist")
	ErrRootNotDir   = errors.New("root path is not a directory")
)

// Scanner walks directory trees into Snapshots.
type Scanner struct {
	Ignore   *IgnoreList
	Progress *Progress
}

// Scan walks root into a Snapshot. When base is non-nil, a file whose size
// and mtime match the base entry reuses the cached hash instead of re-reading
// the file. Symlinks are not followed; an ignored path prunes its whole
// subtree. Directories with no unignored descendant file become
// empty-directory placeholder entries.
func (sc *Scanner) Scan(root, folder, machine string, base *Snapshot) (*Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	snap := NewSnapshot(folder, machine)

	// Emptiness of a directory is only known after its subtree completes, so
	// track every visited directory and, separately, every ancestor of a
	// visited file.
	allDirs := make(map[string]struct{})
	nonEmptyDirs := make(map[string]struct{})
	fileCount := 0

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if sc.Ignore != nil && sc.Ignore.ShouldIgnore(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			allDirs[rel] = struct{}{}
			return nil
		}
		if !d.Type().IsRegular() {
			// symlinks, sockets, devices
			return nil
		}

		markAncestors(rel, nonEmptyDirs)

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		size := fi.Size()
		mtime := fi.ModTime().Unix()

		// Unchanged size+mtime means the cached hash stands in for a full
		// re-read. A same-second rewrite of identical length slips through;
		// that trade-off is deliberate.
		if base != nil {
			if prev, ok := base.Files[rel]; ok && !prev.IsDir && prev.Size == size && prev.Mtime == mtime {
				snap.Files[rel] = prev
				return nil
			}
		}

		hash, err := HashFile(path)
		if err != nil {
			return err
		}
		snap.Files[rel] = &FileEntry{Size: size, Mtime: mtime, Hash: hash}

		fileCount++
		if fileCount%scanProgressEvery == 0 {
			sc.Progress.Scanning(fileCount)
		}
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, err
	}
	if fileCount >= scanProgressEvery {
		sc.Progress.ClearLine()
	}

	for dir := range allDirs {
		if _, ok := nonEmptyDirs[dir]; !ok {
			snap.Files[dir] = &FileEntry{Hash: EmptyDirHash, IsDir: true}
		}
	}

	return snap, nil
}

// ScanPair scans the local root and the drive-side folder concurrently. The
// two walks share no mutable state; both must complete, or either fail,
// before diffing proceeds.
func (sc *Scanner) ScanPair(ctx context.Context, localRoot, driveRoot, folder, machine string, localBase, driveBase *Snapshot) (*Snapshot, *Snapshot, error) {
	var localSnap, driveSnap *Snapshot

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := sc.Scan(localRoot, folder, machine, localBase)
		if err != nil {
			return fmt.Errorf("scan local: %w", err)
		}
		localSnap = snap
		return nil
	})
	g.Go(func() error {
		snap, err := sc.Scan(driveRoot, folder, machine, driveBase)
		if err != nil {
			return fmt.Errorf("scan drive: %w", err)
		}
		driveSnap = snap
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return localSnap, driveSnap, nil
}

func markAncestors(rel string, dirs map[string]struct{}) {
	for {
		i := strings.LastIndexByte(rel, '/')
		if i < 0 {
			return
		}
		rel = rel[:i]
		dirs[rel] = struct{}{}
	}
}

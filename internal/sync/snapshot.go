package sync

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shuttlebox/shuttle/internal/utils"
)

// FileEntry records one filesystem object as seen by a scan. Directory
// entries exist only to represent otherwise-empty directories; for them
// Size and Mtime are zero and Hash is EmptyDirHash.
type FileEntry struct {
	Size  int64  `json:"size"`
	Mtime int64  `json:"mtime_secs"`
	Hash  string `json:"hash"`
	IsDir bool   `json:"is_dir,omitempty"`
}

// Snapshot is one side's state at one instant: a mapping from normalized
// (forward-slash, root-relative) paths to entries, keyed by the mapping's
// drive-relative folder and the machine that produced it.
type Snapshot struct {
	Folder   string                `json:"sync_folder"`
	Machine  string                `json:"machine"`
	SyncedAt time.Time             `json:"synced_at"`
	Files    map[string]*FileEntry `json:"files"`
}

func NewSnapshot(folder, machine string) *Snapshot {
	return &Snapshot{
		Folder:   folder,
		Machine:  machine,
		SyncedAt: time.Now().UTC(),
		Files:    make(map[string]*FileEntry),
	}
}

// SortedPaths returns the snapshot's paths in lexicographic order, the
// iteration order for deterministic diffs.
func (s *Snapshot) SortedPaths() []string {
	paths := make([]string, 0, len(s.Files))
	for path := range s.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

var snapshotNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// SnapshotFilename derives the persisted base-snapshot filename for a
// mapping's drive-relative path.
func SnapshotFilename(driveRel string) string {
	return snapshotNameReplacer.Replace(driveRel) + ".json"
}

// DriveCacheFilename derives the filename of the drive-side scan cache for a
// mapping's drive-relative path.
func DriveCacheFilename(driveRel string) string {
	return snapshotNameReplacer.Replace(driveRel) + "_drive_cache.json"
}

func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snap.Files == nil {
		snap.Files = make(map[string]*FileEntry)
	}
	return &snap, nil
}

// LoadSnapshotOrEmpty returns the persisted snapshot at path, or a fresh
// empty one when no snapshot has been written yet.
func LoadSnapshotOrEmpty(path, folder, machine string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return NewSnapshot(folder, machine), nil
		}
		return nil, fmt.Errorf("stat snapshot %s: %w", path, err)
	}
	return LoadSnapshot(path)
}

func (s *Snapshot) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// IntersectBase derives a new base snapshot after a completed run: local
// entries for every path that is also present on the drive. A path present
// on only one side (an external writer raced the run) must not look deleted
// on the next run. Local entries are kept so their size and mtime keep
// feeding the local scan cache.
func IntersectBase(local, drive *Snapshot) *Snapshot {
	base := NewSnapshot(local.Folder, local.Machine)
	for path, entry := range local.Files {
		if _, ok := drive.Files[path]; ok {
			base.Files[path] = entry
		}
	}
	return base
}

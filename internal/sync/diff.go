package sync

import "sort"

type ChangeKind uint8

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeDeleted
)

var changeKindNames = []string{"Added", "Modified", "Deleted"}

func (k ChangeKind) String() string { return changeKindNames[k] }

// FileChange is one path's difference between a base and a current snapshot.
// Entry is nil when the path was deleted.
type FileChange struct {
	Path  string
	Kind  ChangeKind
	Entry *FileEntry
}

// ComputeChanges diffs base against current, pure and sorted by path. A path
// present in both snapshots counts as modified only when the content hashes
// differ; size and mtime never enter this comparison.
func ComputeChanges(base, current *Snapshot) []FileChange {
	allPaths := make(map[string]struct{}, len(base.Files)+len(current.Files))
	for path := range base.Files {
		allPaths[path] = struct{}{}
	}
	for path := range current.Files {
		allPaths[path] = struct{}{}
	}

	paths := make([]string, 0, len(allPaths))
	for path := range allPaths {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var changes []FileChange
	for _, path := range paths {
		inBase, baseOK := base.Files[path]
		inCurrent, currentOK := current.Files[path]

		switch {
		case !baseOK && currentOK:
			changes = append(changes, FileChange{Path: path, Kind: ChangeAdded, Entry: inCurrent})
		case baseOK && !currentOK:
			changes = append(changes, FileChange{Path: path, Kind: ChangeDeleted})
		case inBase.Hash != inCurrent.Hash:
			changes = append(changes, FileChange{Path: path, Kind: ChangeModified, Entry: inCurrent})
		}
	}

	return changes
}

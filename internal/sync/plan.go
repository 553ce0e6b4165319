package sync

import "sort"

type ActionKind uint8

const (
	ActionCopyToDrive ActionKind = iota
	ActionCopyToLocal
	ActionDeleteFromDrive
	ActionDeleteFromLocal
	ActionConflict
)

var actionKindNames = []string{
	"CopyToDrive",
	"CopyToLocal",
	"DeleteFromDrive",
	"DeleteFromLocal",
	"Conflict",
}

func (k ActionKind) String() string { return actionKindNames[k] }

// ConflictInfo carries the pair of change kinds that collided on one path.
type ConflictInfo struct {
	Local ChangeKind
	Drive ChangeKind
}

// PlanEntry is one path's required action, computed before any mutation.
// Conflict is set only when Action is ActionConflict. IsDir is false for
// deletions; the executor checks the target on disk instead.
type PlanEntry struct {
	Path     string
	IsDir    bool
	Action   ActionKind
	Conflict *ConflictInfo
}

// Plan is the merged set of actions for one mapping, ordered by path.
type Plan struct {
	Entries []PlanEntry
}

func (p *Plan) IsEmpty() bool { return len(p.Entries) == 0 }

func (p *Plan) HasConflicts() bool {
	for _, entry := range p.Entries {
		if entry.Action == ActionConflict {
			return true
		}
	}
	return false
}

// Counts returns the number of entries per action kind.
func (p *Plan) Counts() map[ActionKind]int {
	counts := make(map[ActionKind]int)
	for _, entry := range p.Entries {
		counts[entry.Action]++
	}
	return counts
}

func isWrite(k ChangeKind) bool { return k == ChangeAdded || k == ChangeModified }

// BuildPlan merges two changesets, both relative to the same base snapshot,
// into one plan. This is a three-way merge against a common ancestor:
// agreement (same kind, same resulting content) reconciles silently, and any
// disagreement becomes a conflict entry carrying both original kinds.
func BuildPlan(localChanges, driveChanges []FileChange) *Plan {
	localByPath := make(map[string]*FileChange, len(localChanges))
	for i := range localChanges {
		localByPath[localChanges[i].Path] = &localChanges[i]
	}
	driveByPath := make(map[string]*FileChange, len(driveChanges))
	for i := range driveChanges {
		driveByPath[driveChanges[i].Path] = &driveChanges[i]
	}

	allPaths := make([]string, 0, len(localByPath)+len(driveByPath))
	for path := range localByPath {
		allPaths = append(allPaths, path)
	}
	for path := range driveByPath {
		if _, ok := localByPath[path]; !ok {
			allPaths = append(allPaths, path)
		}
	}
	sort.Strings(allPaths)

	plan := &Plan{}
	for _, path := range allPaths {
		local := localByPath[path]
		drive := driveByPath[path]

		switch {
		case local != nil && drive == nil:
			if isWrite(local.Kind) {
				plan.Entries = append(plan.Entries, PlanEntry{
					Path:   path,
					IsDir:  local.Entry.IsDir,
					Action: ActionCopyToDrive,
				})
			} else {
				plan.Entries = append(plan.Entries, PlanEntry{Path: path, Action: ActionDeleteFromDrive})
			}

		case local == nil && drive != nil:
			if isWrite(drive.Kind) {
				plan.Entries = append(plan.Entries, PlanEntry{
					Path:   path,
					IsDir:  drive.Entry.IsDir,
					Action: ActionCopyToLocal,
				})
			} else {
				plan.Entries = append(plan.Entries, PlanEntry{Path: path, Action: ActionDeleteFromLocal})
			}

		default:
			// Both sides changed since the base.
			if local.Kind == ChangeDeleted && drive.Kind == ChangeDeleted {
				continue
			}
			if isWrite(local.Kind) && isWrite(drive.Kind) && local.Entry.Hash == drive.Entry.Hash {
				// Converged independently.
				continue
			}
			plan.Entries = append(plan.Entries, PlanEntry{
				Path:     path,
				IsDir:    entryIsDir(local.Entry) || entryIsDir(drive.Entry),
				Action:   ActionConflict,
				Conflict: &ConflictInfo{Local: local.Kind, Drive: drive.Kind},
			})
		}
	}

	return plan
}

func entryIsDir(entry *FileEntry) bool {
	return entry != nil && entry.IsDir
}

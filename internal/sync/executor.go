package sync

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/shuttlebox/shuttle/internal/utils"
)

// Result summarizes one executed (or dry-run) plan: counts per action kind,
// total files seen, copied byte volume, and non-fatal per-path errors.
type Result struct {
	CopiedToDrive    int
	CopiedToLocal    int
	DeletedFromDrive int
	DeletedFromLocal int
	Conflicts        int
	TotalFiles       int
	BytesCopied      int64
	Errors           []string
}

func (r *Result) TotalActions() int {
	return r.CopiedToDrive + r.CopiedToLocal + r.DeletedFromDrive + r.DeletedFromLocal + r.Conflicts
}

// Executor applies a plan to the two physical roots, one entry at a time in
// plan order, never reordering. A failing entry is recorded in the result's
// error list and never aborts the run. In dry-run mode the same decisions are
// computed but nothing is mutated.
type Executor struct {
	Machine  string
	Strategy Strategy
	DryRun   bool
	Verbose  bool
	Progress *Progress
}

func (ex *Executor) Execute(plan *Plan, localRoot, driveRoot string) *Result {
	localRoot = filepath.Clean(localRoot)
	driveRoot = filepath.Clean(driveRoot)

	result := &Result{}
	total := len(plan.Entries)

	for i, entry := range plan.Entries {
		ex.Progress.Entry(i+1, total, actionVerb(entry.Action), entry.Path, ex.Verbose)

		var err error
		switch entry.Action {
		case ActionCopyToDrive:
			err = ex.copyEntry(localRoot, driveRoot, entry, result)
			if err == nil {
				result.CopiedToDrive++
			}
		case ActionCopyToLocal:
			err = ex.copyEntry(driveRoot, localRoot, entry, result)
			if err == nil {
				result.CopiedToLocal++
			}
		case ActionDeleteFromDrive:
			err = ex.deleteEntry(driveRoot, entry)
			if err == nil {
				result.DeletedFromDrive++
			}
		case ActionDeleteFromLocal:
			err = ex.deleteEntry(localRoot, entry)
			if err == nil {
				result.DeletedFromLocal++
			}
		case ActionConflict:
			err = ex.resolveConflict(entry, localRoot, driveRoot, result)
			if err == nil {
				result.Conflicts++
			}
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", entry.Action, entry.Path, err))
		}
	}

	if total > 0 {
		ex.Progress.ClearLine()
	}

	if !ex.DryRun && result.TotalActions() > 0 {
		notifyAffectedDirs(plan, localRoot, driveRoot)
	}

	return result
}

func (ex *Executor) copyEntry(srcRoot, dstRoot string, entry PlanEntry, result *Result) error {
	src := filepath.Join(srcRoot, filepath.FromSlash(entry.Path))
	dst := filepath.Join(dstRoot, filepath.FromSlash(entry.Path))
	if entry.IsDir {
		return ex.createDir(dst)
	}
	return ex.copyFile(src, dst, result)
}

func (ex *Executor) createDir(dir string) error {
	if ex.DryRun {
		slog.Debug("dry-run: create dir", "path", dir)
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return nil
}

func (ex *Executor) copyFile(src, dst string, result *Result) error {
	if ex.DryRun {
		slog.Debug("dry-run: copy", "src", src, "dst", dst)
		return nil
	}
	n, err := utils.CopyFile(src, dst)
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	result.BytesCopied += n
	return nil
}

func (ex *Executor) deleteEntry(root string, entry PlanEntry) error {
	target := filepath.Join(root, filepath.FromSlash(entry.Path))
	info, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			// already gone
			return nil
		}
		return fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return ex.deleteDir(target, root)
	}
	return ex.deleteFile(target, root)
}

func (ex *Executor) deleteDir(dir, root string) error {
	if ex.DryRun {
		slog.Debug("dry-run: delete dir", "path", dir)
		return nil
	}
	// Remove only while still empty; a concurrent writer keeps the directory.
	if err := os.Remove(dir); err != nil {
		slog.Debug("directory not removed", "path", dir, "error", err)
		return nil
	}
	ex.cleanupEmptyParents(dir, root)
	return nil
}

func (ex *Executor) deleteFile(file, root string) error {
	if ex.DryRun {
		slog.Debug("dry-run: delete", "path", file)
		return nil
	}
	if err := os.Remove(file); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	ex.cleanupEmptyParents(file, root)
	return nil
}

func (ex *Executor) removeFileIfExists(file, root string) error {
	if _, err := os.Lstat(file); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat: %w", err)
	}
	return ex.deleteFile(file, root)
}

// cleanupEmptyParents removes now-empty ancestor directories upward until a
// non-empty directory or the root.
func (ex *Executor) cleanupEmptyParents(target, root string) {
	dir := filepath.Dir(target)
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func (ex *Executor) resolveConflict(entry PlanEntry, localRoot, driveRoot string, result *Result) error {
	localPath := filepath.Join(localRoot, filepath.FromSlash(entry.Path))
	drivePath := filepath.Join(driveRoot, filepath.FromSlash(entry.Path))

	switch ex.Strategy {
	case StrategyLocalWins:
		if utils.FileExists(localPath) {
			return ex.copyFile(localPath, drivePath, result)
		}
		return ex.removeFileIfExists(drivePath, driveRoot)

	case StrategyDriveWins:
		if utils.FileExists(drivePath) {
			return ex.copyFile(drivePath, localPath, result)
		}
		return ex.removeFileIfExists(localPath, localRoot)

	case StrategyNewerWins:
		return ex.resolveNewer(localPath, drivePath, localRoot, driveRoot, result)

	case StrategyAsk:
		slog.Warn("conflict: interactive resolution unavailable, keeping both versions", "path", entry.Path)
		return ex.resolveBoth(entry.Path, localRoot, driveRoot, result)

	default:
		return ex.resolveBoth(entry.Path, localRoot, driveRoot, result)
	}
}

// resolveNewer compares current on-disk mtimes, not the stale snapshot
// values. The more recent side wins; ties favor local.
func (ex *Executor) resolveNewer(localPath, drivePath, localRoot, driveRoot string, result *Result) error {
	localMtime := mtimeOrZero(localPath)
	driveMtime := mtimeOrZero(drivePath)

	if localMtime >= driveMtime {
		if utils.FileExists(localPath) {
			return ex.copyFile(localPath, drivePath, result)
		}
		return ex.removeFileIfExists(drivePath, driveRoot)
	}
	if utils.FileExists(drivePath) {
		return ex.copyFile(drivePath, localPath, result)
	}
	return ex.removeFileIfExists(localPath, localRoot)
}

// resolveBoth keeps both versions: the drive version under the original name
// on both sides, the local version under a conflict-suffixed sibling on both
// sides. When one side vanished since planning, the surviving version is
// copied to the missing side instead.
func (ex *Executor) resolveBoth(relPath, localRoot, driveRoot string, result *Result) error {
	localPath := filepath.Join(localRoot, filepath.FromSlash(relPath))
	drivePath := filepath.Join(driveRoot, filepath.FromSlash(relPath))
	localExists := utils.FileExists(localPath)
	driveExists := utils.FileExists(drivePath)

	switch {
	case localExists && driveExists:
		if ex.DryRun {
			slog.Debug("dry-run: conflict, would keep both versions", "path", relPath)
			return nil
		}
		conflictRel := conflictSiblingName(relPath, ex.Machine, time.Now().UTC())
		localConflict := filepath.Join(localRoot, filepath.FromSlash(conflictRel))
		if err := utils.EnsureParent(localConflict); err != nil {
			return fmt.Errorf("create conflict dir: %w", err)
		}
		if err := os.Rename(localPath, localConflict); err != nil {
			return fmt.Errorf("rename to %s: %w", conflictRel, err)
		}
		if err := ex.copyFile(drivePath, localPath, result); err != nil {
			return err
		}
		driveConflict := filepath.Join(driveRoot, filepath.FromSlash(conflictRel))
		if err := ex.copyFile(localConflict, driveConflict, result); err != nil {
			return err
		}
		slog.Warn("conflict: kept both versions", "path", relPath, "renamed", conflictRel)
		return nil

	case localExists:
		// Drive side vanished since planning; keep the survivor everywhere.
		return ex.copyFile(localPath, drivePath, result)

	case driveExists:
		return ex.copyFile(drivePath, localPath, result)

	default:
		return nil
	}
}

// conflictSiblingName builds "<stem>.conflict.<machine>.<YYYYMMDDHHMMSS><ext>"
// next to the original path.
func conflictSiblingName(relPath, machine string, now time.Time) string {
	dir := path.Dir(relPath)
	name := path.Base(relPath)
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	conflictName := fmt.Sprintf("%s.conflict.%s.%s%s", stem, machine, now.Format("20060102150405"), ext)
	if dir == "." {
		return conflictName
	}
	return dir + "/" + conflictName
}

func mtimeOrZero(file string) int64 {
	info, err := os.Stat(file)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}

func actionVerb(k ActionKind) string {
	switch k {
	case ActionCopyToDrive:
		return "→ drive"
	case ActionCopyToLocal:
		return "← local"
	case ActionDeleteFromDrive:
		return "✕ drive"
	case ActionDeleteFromLocal:
		return "✕ local"
	default:
		return "⚠ conflict"
	}
}

// notifyAffectedDirs asks the platform file manager to refresh every
// directory touched by the plan. Best-effort, no-op where unsupported.
func notifyAffectedDirs(plan *Plan, localRoot, driveRoot string) {
	affected := map[string]struct{}{
		localRoot: {},
		driveRoot: {},
	}
	for _, entry := range plan.Entries {
		parent := path.Dir(entry.Path)
		if parent == "." {
			continue
		}
		affected[filepath.Join(localRoot, filepath.FromSlash(parent))] = struct{}{}
		affected[filepath.Join(driveRoot, filepath.FromSlash(parent))] = struct{}{}
	}
	for dir := range affected {
		notifyShellUpdate(dir)
	}
}

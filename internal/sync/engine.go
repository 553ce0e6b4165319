package sync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/shuttlebox/shuttle/internal/utils"
)

// RunState tracks where a mapping's run currently is. Per-entry failures
// during Executing stay in the result's error list and never reach Failed;
// only unrecoverable setup or persistence errors do.
type RunState uint8

const (
	StateIdle RunState = iota
	StateScanning
	StateDiffing
	StatePlanning
	StateExecuting
	StatePersisting
	StateFailed
)

var runStateNames = []string{
	"Idle",
	"Scanning",
	"Diffing",
	"Planning",
	"Executing",
	"Persisting",
	"Failed",
}

func (s RunState) String() string { return runStateNames[s] }

// Engine runs full sync passes for mappings against one drive mount. One
// logical run at a time; the only concurrency is the paired directory scan.
type Engine struct {
	Machine  string
	Ignore   *IgnoreList
	Strategy Strategy
	DryRun   bool
	Verbose  bool
	Progress *Progress

	state RunState
}

func (e *Engine) State() RunState { return e.state }

func (e *Engine) setState(log *slog.Logger, s RunState) {
	e.state = s
	log.Debug("run state", "state", s)
}

// SyncMapping runs the full pipeline for one mapping: scan both sides in
// parallel, diff each against the base snapshot, merge into a plan, execute
// it, and persist a fresh base. Dry-run computes and reports the plan without
// mutating anything or persisting snapshots.
func (e *Engine) SyncMapping(ctx context.Context, localRoot, driveMount, driveRel string) (*Plan, *Result, error) {
	log := slog.With("run", uuid.NewString()[:8], "mapping", driveRel)

	plan, result, err := e.run(ctx, log, localRoot, driveMount, driveRel)
	if err != nil {
		e.setState(log, StateFailed)
		return nil, nil, err
	}
	e.setState(log, StateIdle)
	return plan, result, nil
}

// Preview builds the plan for one mapping without executing it or touching
// persisted snapshots. Backs the status and diff commands.
func (e *Engine) Preview(ctx context.Context, localRoot, driveMount, driveRel string) (*Plan, error) {
	driveFolder := filepath.Join(driveMount, filepath.FromSlash(driveRel))

	snapshotDir := SnapshotsDir(driveMount, e.Machine)
	base, err := LoadSnapshotOrEmpty(filepath.Join(snapshotDir, SnapshotFilename(driveRel)), driveRel, e.Machine)
	if err != nil {
		return nil, err
	}
	driveCache, err := LoadSnapshotOrEmpty(filepath.Join(snapshotDir, DriveCacheFilename(driveRel)), driveRel, e.Machine)
	if err != nil {
		return nil, err
	}

	scanner := &Scanner{Ignore: e.Ignore, Progress: e.Progress}
	localSnap, driveSnap, err := scanner.ScanPair(ctx, localRoot, driveFolder, driveRel, e.Machine, base, driveCache)
	if err != nil {
		return nil, err
	}

	return BuildPlan(ComputeChanges(base, localSnap), ComputeChanges(base, driveSnap)), nil
}

func (e *Engine) run(ctx context.Context, log *slog.Logger, localRoot, driveMount, driveRel string) (*Plan, *Result, error) {
	driveFolder := filepath.Join(driveMount, filepath.FromSlash(driveRel))
	if err := utils.EnsureDir(driveFolder); err != nil {
		return nil, nil, fmt.Errorf("create drive folder %s: %w", driveFolder, err)
	}

	snapshotDir := SnapshotsDir(driveMount, e.Machine)
	baseFile := filepath.Join(snapshotDir, SnapshotFilename(driveRel))
	cacheFile := filepath.Join(snapshotDir, DriveCacheFilename(driveRel))

	base, err := LoadSnapshotOrEmpty(baseFile, driveRel, e.Machine)
	if err != nil {
		return nil, nil, err
	}
	driveCache, err := LoadSnapshotOrEmpty(cacheFile, driveRel, e.Machine)
	if err != nil {
		return nil, nil, err
	}

	e.setState(log, StateScanning)
	scanner := &Scanner{Ignore: e.Ignore, Progress: e.Progress}
	localSnap, driveSnap, err := scanner.ScanPair(ctx, localRoot, driveFolder, driveRel, e.Machine, base, driveCache)
	if err != nil {
		return nil, nil, err
	}
	log.Info("scan complete", "local_files", len(localSnap.Files), "drive_files", len(driveSnap.Files))

	e.setState(log, StateDiffing)
	localChanges := ComputeChanges(base, localSnap)
	driveChanges := ComputeChanges(base, driveSnap)
	log.Info("changes detected", "local", len(localChanges), "drive", len(driveChanges))

	e.setState(log, StatePlanning)
	plan := BuildPlan(localChanges, driveChanges)

	if plan.IsEmpty() {
		result := &Result{TotalFiles: len(localSnap.Files)}
		if !e.DryRun {
			// Refresh both persisted snapshots so the hash caches stay warm
			// even after a no-op run.
			e.setState(log, StatePersisting)
			if err := e.persist(localSnap, driveSnap, baseFile, cacheFile); err != nil {
				return nil, nil, err
			}
		}
		return plan, result, nil
	}

	e.setState(log, StateExecuting)
	executor := &Executor{
		Machine:  e.Machine,
		Strategy: e.Strategy,
		DryRun:   e.DryRun,
		Verbose:  e.Verbose,
		Progress: e.Progress,
	}
	result := executor.Execute(plan, localRoot, driveFolder)

	if e.DryRun {
		result.TotalFiles = len(localSnap.Files)
		return plan, result, nil
	}

	e.setState(log, StatePersisting)
	// The new base comes from a fresh post-sync scan, never from the stale
	// in-memory plan: an external writer racing the run costs a re-detection
	// on the next pass, not a corrupted base.
	finalLocal, finalDrive, err := scanner.ScanPair(ctx, localRoot, driveFolder, driveRel, e.Machine, localSnap, driveSnap)
	if err != nil {
		return nil, nil, fmt.Errorf("post-sync scan: %w", err)
	}
	result.TotalFiles = len(finalLocal.Files)
	if err := e.persist(finalLocal, finalDrive, baseFile, cacheFile); err != nil {
		return nil, nil, err
	}

	return plan, result, nil
}

// persist writes the new base (the local∩drive intersection) and the
// drive-side scan cache.
func (e *Engine) persist(local, drive *Snapshot, baseFile, cacheFile string) error {
	newBase := IntersectBase(local, drive)
	newBase.SyncedAt = time.Now().UTC()
	if err := newBase.Save(baseFile); err != nil {
		return err
	}

	drive.SyncedAt = time.Now().UTC()
	return drive.Save(cacheFile)
}

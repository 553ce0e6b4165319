package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	// BookkeepingDirName is the shuttle-owned directory at the drive root.
	BookkeepingDirName = ".shuttle"

	syncLogName = "sync.log"
)

func BookkeepingDir(driveMount string) string {
	return filepath.Join(driveMount, BookkeepingDirName)
}

// SnapshotsDir is the per-machine snapshot directory on the drive.
func SnapshotsDir(driveMount, machine string) string {
	return filepath.Join(BookkeepingDir(driveMount), "snapshots", machine)
}

func syncLogPath(driveMount string) string {
	return filepath.Join(BookkeepingDir(driveMount), syncLogName)
}

// AppendSyncLog appends one line for a completed non-dry-run run. Every
// machine writing to the drive shares this log, so the append is guarded by
// a cross-process file lock.
func AppendSyncLog(driveMount, machine string, actions int) error {
	logPath := syncLogPath(driveMount)

	lock := flock.New(logPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock sync log: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open sync log: %w", err)
	}
	defer f.Close()

	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	if _, err := fmt.Fprintf(f, "[%s] machine=%s actions=%d\n", timestamp, machine, actions); err != nil {
		return fmt.Errorf("append sync log: %w", err)
	}
	return nil
}

// ReadSyncLog returns up to limit most recent sync log lines, oldest first.
func ReadSyncLog(driveMount string, limit int) ([]string, error) {
	data, err := os.ReadFile(syncLogPath(driveMount))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sync log: %w", err)
	}

	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil, nil
	}
	lines := strings.Split(trimmed, "\n")
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, nil
}

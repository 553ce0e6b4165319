package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shuttlebox/shuttle/internal/config"
	syncpkg "github.com/shuttlebox/shuttle/internal/sync"
	"github.com/shuttlebox/shuttle/internal/utils"
)

var syncCmd = &cobra.Command{
	Use:   "sync <drive-mount>",
	Short: "Sync all configured folders with the drive",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

var statusCmd = &cobra.Command{
	Use:   "status <drive-mount>",
	Short: "Preview pending changes without applying them",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var diffCmd = &cobra.Command{
	Use:   "diff <drive-mount>",
	Short: "Show the full pending plan per mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

var logCmd = &cobra.Command{
	Use:   "log <drive-mount>",
	Short: "Show sync history from the drive",
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "preview only, make no changes")
	logCmd.Flags().Int("limit", 20, "number of recent entries to show")
}

func newEngine(cmd *cobra.Command, cfg *config.Config, dryRun bool) *syncpkg.Engine {
	verbose, _ := cmd.Flags().GetBool("verbose")
	strategy, _ := syncpkg.ParseStrategy(cfg.Strategy)
	return &syncpkg.Engine{
		Machine:  cfg.Machine,
		Ignore:   syncpkg.NewIgnoreList(cfg.Ignore),
		Strategy: strategy,
		DryRun:   dryRun,
		Verbose:  verbose,
		Progress: syncpkg.NewProgress(os.Stdout),
	}
}

func resolveDriveMount(arg string) (string, error) {
	driveMount, err := utils.ResolvePath(arg)
	if err != nil {
		return "", err
	}
	if !utils.DirExists(driveMount) {
		return "", fmt.Errorf("drive mount point does not exist: %s", driveMount)
	}
	return driveMount, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	driveMount, err := resolveDriveMount(args[0])
	if err != nil {
		return err
	}
	if len(cfg.Mappings) == 0 {
		fmt.Println("No sync mappings configured. Use `shuttle add` to add one.")
		return nil
	}
	if err := utils.EnsureDir(syncpkg.BookkeepingDir(driveMount)); err != nil {
		return fmt.Errorf("create bookkeeping dir: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	engine := newEngine(cmd, cfg, dryRun)

	if dryRun {
		fmt.Println(yellow("=== DRY RUN (no changes will be made) ==="))
		fmt.Println()
	}

	totalActions := 0
	for _, mapping := range cfg.Mappings {
		fmt.Printf("Syncing %s <-> %s\n", cyan(mapping.Local), cyan(mapping.Drive))

		if !utils.DirExists(mapping.Local) {
			fmt.Printf("  %s local path does not exist, skipping\n", yellow("!"))
			continue
		}

		_, result, err := engine.SyncMapping(cmd.Context(), mapping.Local, driveMount, mapping.Drive)
		if err != nil {
			fmt.Printf("  %s %v\n", red("error:"), err)
			continue
		}

		printResult(result)
		totalActions += result.TotalActions()
		fmt.Println()
	}

	if !dryRun && totalActions > 0 {
		if err := syncpkg.AppendSyncLog(driveMount, cfg.Machine, totalActions); err != nil {
			slog.Warn("failed to append sync log", "error", err)
		}
	}
	if totalActions == 0 {
		fmt.Println(green("Everything is in sync."))
	}
	return nil
}

func printResult(r *syncpkg.Result) {
	if r.TotalActions() == 0 {
		fmt.Println("  No changes needed.")
		return
	}
	if r.CopiedToDrive > 0 {
		fmt.Printf("  %s copied to drive: %d\n", green("→"), r.CopiedToDrive)
	}
	if r.CopiedToLocal > 0 {
		fmt.Printf("  %s copied to local: %d\n", green("←"), r.CopiedToLocal)
	}
	if r.DeletedFromDrive > 0 {
		fmt.Printf("  %s deleted from drive: %d\n", yellow("✕"), r.DeletedFromDrive)
	}
	if r.DeletedFromLocal > 0 {
		fmt.Printf("  %s deleted from local: %d\n", yellow("✕"), r.DeletedFromLocal)
	}
	if r.Conflicts > 0 {
		fmt.Printf("  %s conflicts handled: %d\n", yellow("⚠"), r.Conflicts)
	}
	if r.BytesCopied > 0 {
		fmt.Printf("  transferred %s\n", humanize.Bytes(uint64(r.BytesCopied)))
	}
	if len(r.Errors) > 0 {
		fmt.Println(red("  Errors:"))
		for _, e := range r.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	return previewMappings(cmd, args[0], func(mapping config.Mapping, plan *syncpkg.Plan) {
		if plan.IsEmpty() {
			fmt.Println(green("  In sync."))
			return
		}
		counts := plan.Counts()
		if n := counts[syncpkg.ActionCopyToDrive]; n > 0 {
			fmt.Printf("  → %d file(s) to copy to drive\n", n)
		}
		if n := counts[syncpkg.ActionCopyToLocal]; n > 0 {
			fmt.Printf("  ← %d file(s) to copy to local\n", n)
		}
		if n := counts[syncpkg.ActionDeleteFromDrive]; n > 0 {
			fmt.Printf("  ✕ %d file(s) to delete from drive\n", n)
		}
		if n := counts[syncpkg.ActionDeleteFromLocal]; n > 0 {
			fmt.Printf("  ✕ %d file(s) to delete from local\n", n)
		}
		if n := counts[syncpkg.ActionConflict]; n > 0 {
			fmt.Printf("  %s %d conflict(s)\n", yellow("⚠"), n)
		}
	})
}

func runDiff(cmd *cobra.Command, args []string) error {
	return previewMappings(cmd, args[0], func(mapping config.Mapping, plan *syncpkg.Plan) {
		if plan.IsEmpty() {
			fmt.Println("  No differences.")
			return
		}
		for _, entry := range plan.Entries {
			fmt.Printf("  %-10s %s\n", entry.Action, entry.Path)
		}
	})
}

func previewMappings(cmd *cobra.Command, driveArg string, render func(config.Mapping, *syncpkg.Plan)) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	driveMount, err := resolveDriveMount(driveArg)
	if err != nil {
		return err
	}

	engine := newEngine(cmd, cfg, true)

	for _, mapping := range cfg.Mappings {
		fmt.Printf("%s <-> %s\n", cyan(mapping.Local), cyan(mapping.Drive))

		if !utils.DirExists(mapping.Local) {
			fmt.Printf("  %s local path does not exist\n", yellow("!"))
			continue
		}
		if !utils.DirExists(filepath.Join(driveMount, filepath.FromSlash(mapping.Drive))) {
			fmt.Println("  Drive folder does not exist yet (will be created on first sync).")
			fmt.Println()
			continue
		}

		plan, err := engine.Preview(cmd.Context(), mapping.Local, driveMount, mapping.Drive)
		if err != nil {
			fmt.Printf("  %s %v\n", red("error:"), err)
			continue
		}
		render(mapping, plan)
		fmt.Println()
	}
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	driveMount, err := resolveDriveMount(args[0])
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	lines, err := syncpkg.ReadSyncLog(driveMount, limit)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Println("No sync history found.")
		return nil
	}

	fmt.Printf("Sync history (last %d entries):\n", limit)
	for _, line := range lines {
		fmt.Printf("  %s\n", line)
	}
	return nil
}

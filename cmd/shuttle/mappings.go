package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shuttlebox/shuttle/internal/config"
	"github.com/shuttlebox/shuttle/internal/utils"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a sync folder mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFile(cmd)
		if err != nil {
			return err
		}

		local, _ := cmd.Flags().GetString("local")
		drive, _ := cmd.Flags().GetString("drive")
		name, _ := cmd.Flags().GetString("name")

		resolved, err := utils.ResolvePath(local)
		if err != nil {
			return err
		}
		if !utils.DirExists(resolved) {
			return fmt.Errorf("local path does not exist: %s", resolved)
		}

		if err := cfg.AddMapping(config.Mapping{Name: name, Local: resolved, Drive: drive}); err != nil {
			return err
		}
		if err := cfg.Save(cfg.Path); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println("Added sync mapping:")
		fmt.Printf("  Local: %s\n", cyan(resolved))
		fmt.Printf("  Drive: %s\n", cyan(drive))
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a sync folder mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFile(cmd)
		if err != nil {
			return err
		}

		drive, _ := cmd.Flags().GetString("drive")
		if err := cfg.RemoveMapping(drive); err != nil {
			return err
		}
		if err := cfg.Save(cfg.Path); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Printf("Removed sync mapping for drive path %s\n", cyan(drive))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sync mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Machine: %s\n", cyan(cfg.Machine))
		fmt.Printf("Conflict strategy: %s\n", cfg.Strategy)
		fmt.Println()

		if len(cfg.Mappings) == 0 {
			fmt.Println("No sync mappings configured. Use `shuttle add` to add one.")
			return nil
		}

		fmt.Println("Sync mappings:")
		for i, mapping := range cfg.Mappings {
			label := ""
			if mapping.Name != "" {
				label = fmt.Sprintf(" (%s)", mapping.Name)
			}
			fmt.Printf("  %d. Local: %s%s\n", i+1, mapping.Local, label)
			fmt.Printf("     Drive: %s\n", mapping.Drive)
		}

		fmt.Println()
		fmt.Printf("Ignore patterns: %s\n", strings.Join(cfg.Ignore, ", "))
		return nil
	},
}

// loadConfigFile reads the config file directly for commands that rewrite it.
func loadConfigFile(cmd *cobra.Command) (*config.Config, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config (run `shuttle init` first): %w", err)
	}
	return cfg, nil
}

func init() {
	addCmd.Flags().String("local", "", "local folder path")
	addCmd.Flags().String("drive", "", "relative path on the drive (e.g. \"share/projects\")")
	addCmd.Flags().String("name", "", "optional alias for the mapping")
	_ = addCmd.MarkFlagRequired("local")
	_ = addCmd.MarkFlagRequired("drive")

	removeCmd.Flags().String("drive", "", "relative drive path of the mapping to remove")
	_ = removeCmd.MarkFlagRequired("drive")
}

package main

import (
	"fmt"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/spf13/cobra"

	"github.com/shuttlebox/shuttle/internal/config"
	"github.com/shuttlebox/shuttle/internal/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the local shuttle configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		if utils.FileExists(path) {
			return fmt.Errorf("config already exists at %s, delete it first to reinitialize", path)
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = defaultMachineName()
		}

		cfg := config.New(name)
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Printf("Initialized shuttle for machine %s\n", cyan(name))
		fmt.Printf("Config saved to %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().String("name", "", "unique machine name (defaults to hostname plus a machine id)")
}

// defaultMachineName combines the hostname with a short stable machine id so
// two machines with the same hostname still get distinct snapshot dirs.
func defaultMachineName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "machine"
	}
	if id, err := machineid.ProtectedID("shuttle"); err == nil && len(id) >= 8 {
		return fmt.Sprintf("%s-%s", host, id[:8])
	}
	return host
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shuttlebox/shuttle/internal/config"
	syncpkg "github.com/shuttlebox/shuttle/internal/sync"
	"github.com/shuttlebox/shuttle/internal/version"
)

var (
	red    = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "shuttle",
	Short:   "Sync folders across machines via a shared shuttle drive",
	Version: version.Detailed(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)
		cmd.SilenceUsage = true
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "shuttle config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.AddCommand(initCmd, addCmd, removeCmd, listCmd, syncCmd, statusCmd, diffCmd, logCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// loadConfig reads and validates the config via viper, honoring --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	if cmd.Flag("config").Changed {
		v.SetConfigFile(configPath(cmd))
	} else {
		v.AddConfigPath(config.DefaultConfigDir)
		v.SetConfigName("config")
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config not found, run `shuttle init` first")
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &config.Config{
		Path:     v.ConfigFileUsed(),
		Machine:  v.GetString("machine"),
		Ignore:   v.GetStringSlice("ignore"),
		Strategy: v.GetString("strategy"),
	}
	if err := v.UnmarshalKey("mappings", &cfg.Mappings); err != nil {
		return nil, fmt.Errorf("parse mappings: %w", err)
	}
	if len(cfg.Ignore) == 0 {
		cfg.Ignore = config.DefaultIgnorePatterns()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = string(syncpkg.StrategyBoth)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Detailed())
	},
}

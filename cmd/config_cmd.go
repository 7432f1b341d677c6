package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/cli"
	"github.com/mattsolle/ccgauge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(config.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	limit := "—"
	if cfg.General.CustomLimit > 0 {
		limit = cli.FormatNumber(cfg.General.CustomLimit)
	}
	dirs := "defaults only"
	if len(cfg.General.DataDirs) > 0 {
		dirs = fmt.Sprintf("%v", cfg.General.DataDirs)
	}

	exists := "missing (using defaults)"
	if config.Exists() {
		exists = config.Path()
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Config file", exists},
		{"Plan", cfg.General.Plan},
		{"Custom limit", limit},
		{"Extra data dirs", dirs},
		{"Daemon interval", fmt.Sprintf("%ds", cfg.Daemon.IntervalSec)},
		{"Cache", config.CachePath()},
	}))
	fmt.Println()
	return nil
}

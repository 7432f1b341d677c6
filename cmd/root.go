// Package cmd implements the ccgauge command-line interface.
package cmd

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/config"
	"github.com/mattsolle/ccgauge/internal/pipeline"
)

var (
	flagDataDirs []string
	flagPlan     string
	flagLimit    int64
	flagHourly   bool
	flagNoCache  bool
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "ccgauge",
	Short: "Claude Code session and burn-rate gauge",
	Long:  "Track Claude Code token usage: 5-hour sessions, burn rates, limits, and per-project breakdowns.",
	RunE:  runStatus,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&flagDataDirs, "data-dir", "d", nil,
		"Extra log root to scan (repeatable; must be inside the Claude data directories)")
	rootCmd.PersistentFlags().StringVarP(&flagPlan, "plan", "p", "",
		"Plan tier: pro, max5, max20, or auto")
	rootCmd.PersistentFlags().Int64Var(&flagLimit, "limit", 0,
		"Custom session token limit (overrides plan)")
	rootCmd.PersistentFlags().BoolVar(&flagHourly, "hourly", false,
		"Use hour-aligned session windows instead of rolling windows")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false,
		"Skip the entry cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false,
		"Suppress progress output")
}

// loadOptions merges config and flags into pipeline options. Flags win.
func loadOptions() (pipeline.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return pipeline.Options{}, err
	}

	planStr := cfg.General.Plan
	if flagPlan != "" {
		planStr = flagPlan
	}
	plan, err := config.ParsePlan(planStr)
	if err != nil {
		return pipeline.Options{}, err
	}

	customLimit := cfg.General.CustomLimit
	if flagLimit > 0 {
		customLimit = flagLimit
	}

	policy := pipeline.PolicyRolling
	if flagHourly {
		policy = pipeline.PolicyHourAligned
	}

	opts := pipeline.Options{
		DataDirs:    append(cfg.General.DataDirs, flagDataDirs...),
		Plan:        plan,
		CustomLimit: customLimit,
		Policy:      policy,
		NoCache:     flagNoCache,
		CachePath:   config.CachePath(),
	}
	return opts, nil
}

// load runs one refresh cycle with the merged options.
func load() (*pipeline.Result, error) {
	opts, err := loadOptions()
	if err != nil {
		return nil, err
	}
	if flagQuiet {
		log.SetOutput(io.Discard)
	}
	opts.Now = time.Now()
	return pipeline.Load(opts), nil
}

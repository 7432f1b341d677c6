package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	plan := cfg.General.Plan
	if plan == "" {
		plan = string(config.PlanAuto)
	}
	customLimit := ""
	if cfg.General.CustomLimit > 0 {
		customLimit = strconv.FormatInt(cfg.General.CustomLimit, 10)
	}
	interval := strconv.Itoa(cfg.Daemon.IntervalSec)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Plan tier").
				Description("Governs the token ceiling per 5-hour session.").
				Options(
					huh.NewOption("Auto-detect from usage", string(config.PlanAuto)),
					huh.NewOption("Pro (44K tokens)", string(config.PlanPro)),
					huh.NewOption("Max 5x (220K tokens)", string(config.PlanMax5)),
					huh.NewOption("Max 20x (880K tokens)", string(config.PlanMax20)),
				).
				Value(&plan),

			huh.NewInput().
				Title("Custom token limit").
				Description("Optional; overrides the plan ceiling. Leave empty to skip.").
				Validate(validateOptionalInt).
				Value(&customLimit),

			huh.NewInput().
				Title("Daemon refresh interval (seconds)").
				Validate(validateOptionalInt).
				Value(&interval),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.General.Plan = plan
	cfg.General.CustomLimit = 0
	if customLimit != "" {
		cfg.General.CustomLimit, _ = strconv.ParseInt(customLimit, 10, 64)
	}
	if n, err := strconv.Atoi(interval); err == nil && n > 0 {
		cfg.Daemon.IntervalSec = n
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("\n  Saved %s\n\n", config.Path())
	return nil
}

func validateOptionalInt(s string) error {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err != nil || n < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

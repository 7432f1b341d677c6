package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/tui"
)

var flagWatchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live session view",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagWatchInterval, "interval", 10*time.Second, "Refresh interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	app := tui.NewApp(opts, flagWatchInterval)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running watch view: %w", err)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/cli"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Overall usage statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	result, err := load()
	if err != nil {
		return err
	}
	stats := result.Stats

	fmt.Println()
	fmt.Println(cli.RenderTitle("USAGE STATISTICS"))
	fmt.Println()

	if stats.TotalSessions == 0 {
		fmt.Println("  No sessions found.")
		fmt.Println()
		return nil
	}

	pairs := [][2]string{
		{"Sessions", cli.FormatNumber(int64(stats.TotalSessions))},
		{"Total tokens", cli.FormatNumber(stats.TotalTokens)},
		{"Total cost", cli.FormatCost(stats.TotalCostUSD)},
		{"Avg tokens/session", cli.FormatNumber(stats.AvgTokensPerSession)},
		{"Avg cost/session", cli.FormatCost(stats.AvgCostPerSession)},
	}
	if stats.PeakSession != nil {
		pairs = append(pairs, [2]string{"Peak session",
			fmt.Sprintf("%s (%s tokens)",
				stats.PeakSession.StartTime.Local().Format("Jan 02 15:04"),
				cli.FormatTokens(stats.PeakSession.TokenCount))})
	}
	if !stats.PeakDay.IsZero() {
		pairs = append(pairs, [2]string{"Peak day",
			fmt.Sprintf("%s (%s tokens)",
				stats.PeakDay.Format("Jan 02"),
				cli.FormatTokens(stats.PeakDayTokens))})
	}
	pairs = append(pairs, [2]string{"Current streak",
		fmt.Sprintf("%d day(s)", stats.CurrentStreakDays)})

	fmt.Print(cli.RenderKV(pairs))
	fmt.Println()
	return nil
}

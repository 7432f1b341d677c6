package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/cli"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Session list, most recent first",
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "count", "c", 20, "Number of sessions to show")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(_ *cobra.Command, _ []string) error {
	result, err := load()
	if err != nil {
		return err
	}

	sessions := result.Sessions
	if len(sessions) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[:sessionsLimit]
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		marker := ""
		if s.IsActive {
			marker = " *"
		}
		rate := "—"
		if s.BurnRate != nil {
			rate = cli.FormatRate(s.BurnRate.TokensPerMinute)
		}
		rows = append(rows, []string{
			s.StartTime.Local().Format("Jan 02 15:04") + marker,
			cli.FormatTokens(s.TokenCount),
			cli.FormatTokens(s.TokenLimit),
			rate,
			cli.FormatCost(s.CostUSD),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("SESSIONS (%d shown, * active)", len(rows)),
		Headers: []string{"Start", "Tokens", "Limit", "Burn", "Cost"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

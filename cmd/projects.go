package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/cli"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Per-project usage breakdown",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	result, err := load()
	if err != nil {
		return err
	}

	if len(result.Projects) == 0 {
		fmt.Println("\n  No usage found.")
		return nil
	}

	rows := make([][]string, 0, len(result.Projects))
	for _, p := range result.Projects {
		rows = append(rows, []string{
			cli.Truncate(cli.ProjectDisplayName(p.ProjectPath), 24),
			cli.FormatTokens(p.TotalTokens),
			fmt.Sprintf("%d", p.SessionCount),
			cli.FormatTokens(p.AvgTokensPerSession),
			p.LastUsed.Local().Format("Jan 02"),
			cli.FormatPercent(p.Percent / 100),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "PROJECTS",
		Headers: []string{"Project", "Tokens", "Days", "Avg/Day", "Last Used", "Share"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

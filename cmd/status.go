package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/cli"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Active session, limit gauge, and burn rate",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	result, err := load()
	if err != nil {
		return err
	}
	now := time.Now()

	fmt.Println()
	fmt.Println(cli.RenderTitle("CCGAUGE STATUS"))
	fmt.Println()

	active := result.Active
	if active == nil {
		fmt.Println("  No active session.")
		if len(result.Sessions) > 0 {
			last := result.Sessions[0]
			fmt.Printf("  Last session started %s (%s tokens).\n",
				last.StartTime.Local().Format("Jan 02 15:04"),
				cli.FormatTokens(last.TokenCount))
		}
		fmt.Println()
		return nil
	}

	fmt.Println("  " + cli.RenderGauge(active.UsagePercent(), 30))
	fmt.Println()

	pairs := [][2]string{
		{"Tokens", fmt.Sprintf("%s / %s", cli.FormatNumber(active.TokenCount), cli.FormatNumber(active.TokenLimit))},
		{"Remaining", cli.FormatNumber(active.Remaining())},
		{"Cost", cli.FormatCost(active.CostUSD)},
		{"Resets in", cli.FormatDurationUntil(active.EndTime, now)},
	}
	if active.BurnRate != nil {
		pairs = append(pairs, [2]string{"Burn rate", cli.FormatRate(active.BurnRate.TokensPerMinute)})
	}
	if t, ok := active.PredictedExhaustion(now); ok {
		if t.Before(active.EndTime) {
			pairs = append(pairs, [2]string{"Limit hit at", t.Local().Format("15:04")})
		} else {
			pairs = append(pairs, [2]string{"Limit hit at", "after reset"})
		}
	}
	fmt.Print(cli.RenderKV(pairs))

	if breakdown := active.Breakdown(); len(breakdown) > 0 {
		fmt.Println()
		for _, b := range breakdown {
			fmt.Printf("    %-8s %10s  %s\n",
				b.Model, cli.FormatTokens(b.TokenCount), cli.FormatPercent(b.Percent/100))
		}
	}
	fmt.Println()
	return nil
}

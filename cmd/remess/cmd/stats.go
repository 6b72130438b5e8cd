package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show app-wide message statistics",
	Long: `Show totals across all direct conversations: message count, sent
versus received, per-year breakdown, and average messages per active day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := newEngine()

		fmt.Printf("Snapshot: %s\n\n", cfg.Data.SnapshotPath)
		fmt.Printf("Total messages:   %d\n", e.TotalMessages(ctx))

		sr := e.SentVsReceived(ctx)
		fmt.Printf("Sent:             %d\n", sr.Sent)
		fmt.Printf("Received:         %d\n", sr.Received)
		fmt.Printf("Average per day:  %.0f\n", e.AverageMessagesPerDay(ctx))

		if most := e.MostActiveYear(ctx); most != nil {
			fmt.Printf("Most active year: %d (%d messages)\n", most.Year, most.Count)
		}

		byYear := e.MessagesByYear(ctx)
		if len(byYear) > 0 {
			fmt.Println("\nBy year:")
			for _, yc := range byYear {
				fmt.Printf("  %d  %d\n", yc.Year, yc.Count)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

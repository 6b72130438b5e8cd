package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/stats"
)

var (
	contactYear      int
	contactWordCount int
	contactSender    string
)

var contactCmd = &cobra.Command{
	Use:   "contact <name-or-handle>",
	Short: "Show statistics for one contact",
	Long: `Show the statistics block for one direct conversation, plus top
words, emojis, and tapback tallies. The argument may be a contact name
from contacts.toml (merging all of that person's handles) or a raw
handle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		book, err := loadBook()
		if err != nil {
			return err
		}
		e := newEngine()

		handles := book.Resolve(args[0])
		var cs *stats.ContactStats
		if len(handles) == 1 {
			cs = e.ContactStats(ctx, handles[0], contactYear)
		} else {
			cs = e.CombinedContactStats(ctx, handles)
		}
		if cs == nil {
			return fmt.Errorf("no statistics available for %q", args[0])
		}

		labels := make([]string, len(handles))
		for i, h := range handles {
			labels[i] = stats.FormatHandle(h)
		}
		fmt.Printf("%s (%s)\n\n", book.DisplayName(handles[0], labels[0]), strings.Join(labels, ", "))
		printStatsBlock(cs.StatsBlock)

		sender := filter.ParseSender(contactSender)
		if words := e.ContactWords(ctx, handles, contactWordCount, sender); len(words) > 0 {
			fmt.Println("\nTop words:")
			printTokens(words)
		}
		if emojis := e.ContactEmojis(ctx, handles, contactWordCount, sender); len(emojis) > 0 {
			fmt.Println("\nTop emojis:")
			printTokens(emojis)
		}

		tally := e.ContactReactions(ctx, handles, contactYear)
		fmt.Println("\nTapbacks:")
		printTally(tally)
		return nil
	},
}

func printStatsBlock(b stats.StatsBlock) {
	fmt.Printf("Total messages:   %d (sent %d, received %d)\n", b.TotalMessages, b.SentMessages, b.ReceivedMessages)
	if b.FirstMessageDate != nil {
		fmt.Printf("First message:    %s\n", b.FirstMessageDate.Format("Jan 2, 2006"))
	}
	if b.MostActiveYear != 0 {
		fmt.Printf("Most active year: %d (%d messages)\n", b.MostActiveYear, b.MostActiveCount)
	}
	fmt.Printf("Average per day:  %g\n", b.AvgPerDay)
	fmt.Printf("Longest streak:   %d days\n", b.LongestStreak)
	if len(b.MessagesByYear) > 0 {
		fmt.Println("By year:")
		for _, yc := range b.MessagesByYear {
			fmt.Printf("  %d  %d\n", yc.Year, yc.Count)
		}
	}
}

func printTokens(tokens []stats.TokenCount) {
	for _, tc := range tokens {
		fmt.Printf("  %-20s %d\n", tc.Token, tc.Count)
	}
}

func printTally(t stats.ReactionTally) {
	fmt.Println("  You:")
	for _, rc := range t.YourReactions {
		fmt.Printf("    %-10s %d\n", rc.Kind, rc.Count)
	}
	fmt.Println("  Them:")
	for _, rc := range t.TheirReactions {
		fmt.Printf("    %-10s %d\n", rc.Kind, rc.Count)
	}
}

func init() {
	contactCmd.Flags().IntVar(&contactYear, "year", 0, "restrict statistics to one calendar year")
	contactCmd.Flags().IntVarP(&contactWordCount, "limit", "n", 10, "number of words and emojis to show")
	contactCmd.Flags().StringVar(&contactSender, "sender", "both", "word/emoji sender filter: you, them, both")
	rootCmd.AddCommand(contactCmd)
}

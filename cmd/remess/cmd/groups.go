package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FO214/remess/internal/filter"
)

var (
	groupsLimit int
	groupYear   int
	groupPerson string
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Rank group chats by message volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEngine()

		ranked := e.TopGroupChats(cmd.Context(), groupsLimit)
		if len(ranked) == 0 {
			fmt.Println("No group chats found.")
			return nil
		}
		for i, gc := range ranked {
			name := "(unnamed)"
			if gc.DisplayName != nil {
				name = *gc.DisplayName
			}
			fmt.Printf("%3d. %-24s %6d messages  [id %d, %d members: %s]\n",
				i+1, name, gc.MessageCount, gc.ChatID, gc.ParticipantCount,
				strings.Join(gc.SampleParticipants, ", "))
		}
		return nil
	},
}

var groupCmd = &cobra.Command{
	Use:   "group <chat-id>",
	Short: "Show statistics for one group chat",
	Long: `Show the statistics block for one group chat: totals, per-year
breakdown, streaks, per-participant counts, top words and emojis, and
tapback tallies. Find chat IDs with "remess groups".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("chat id must be an integer: %q", args[0])
		}
		ctx := cmd.Context()
		book, err := loadBook()
		if err != nil {
			return err
		}
		e := newEngine()

		gs := e.GroupChatStats(ctx, chatID, groupYear)
		if gs == nil {
			return fmt.Errorf("no such group chat: %d", chatID)
		}

		name := "(unnamed)"
		if gs.DisplayName != nil {
			name = *gs.DisplayName
		}
		fmt.Printf("%s (%d participants)\n\n", name, gs.ParticipantCount)
		printStatsBlock(gs.StatsBlock)

		if members := e.GroupChatParticipants(ctx, chatID, groupYear); len(members) > 0 {
			fmt.Println("\nBy participant:")
			for _, pc := range members {
				fmt.Printf("  %-28s %d\n", labelFor(book, pc.HandleID), pc.MessageCount)
			}
		}

		person := filter.ParsePerson(groupPerson)
		if words := e.GroupChatWords(ctx, chatID, 10, person); len(words) > 0 {
			fmt.Println("\nTop words:")
			printTokens(words)
		}
		if emojis := e.GroupChatEmojis(ctx, chatID, 10, person); len(emojis) > 0 {
			fmt.Println("\nTop emojis:")
			printTokens(emojis)
		}

		fmt.Println("\nTapbacks:")
		printTally(e.GroupChatReactions(ctx, chatID, person, groupYear))
		return nil
	},
}

func init() {
	groupsCmd.Flags().IntVarP(&groupsLimit, "limit", "n", 20, "number of group chats to show (0 = all)")
	groupCmd.Flags().IntVar(&groupYear, "year", 0, "restrict statistics to one calendar year")
	groupCmd.Flags().StringVar(&groupPerson, "person", "", "word/emoji filter: you, all, or a handle")
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(groupCmd)
}

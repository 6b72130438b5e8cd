package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/stats"
)

var (
	searchContact string
	searchGroup   int64
	searchLimit   int
	searchOffset  int
	searchSender  string
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search message text in one conversation",
	Long: `Count and show messages containing a term. Scope the search with
--contact (name or handle) or --group (chat id). Matches are shown
newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := args[0]
		ctx := cmd.Context()
		e := newEngine()

		var result stats.SearchResult
		switch {
		case searchContact != "":
			book, err := loadBook()
			if err != nil {
				return err
			}
			result = e.SearchContactMessages(ctx, book.Resolve(searchContact), term,
				searchLimit, searchOffset, filter.ParseSender(searchSender))
		case searchGroup != 0:
			result = e.SearchGroupChatMessages(ctx, searchGroup, term,
				searchLimit, searchOffset, filter.ParsePerson(searchSender))
		default:
			return fmt.Errorf("specify --contact or --group")
		}

		fmt.Printf("%d message(s) matching %s\n", result.Count, strconv.Quote(term))
		for _, ex := range result.Examples {
			who := "them"
			if ex.IsFromMe {
				who = "you"
			}
			fmt.Printf("  [%s] %s: %s\n", ex.FormattedDate, who, ex.Text)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchContact, "contact", "", "contact name or handle to search")
	searchCmd.Flags().Int64Var(&searchGroup, "group", 0, "group chat id to search")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "number of matches to show")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of matches to skip")
	searchCmd.Flags().StringVar(&searchSender, "sender", "", "sender filter: you, them/all, or a handle (groups)")
	rootCmd.AddCommand(searchCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var wordsLimit int

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Show the words you send most often",
	Long: `Show word frequencies across every message you have sent, direct
and group chats alike. Stop words and very short tokens are dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEngine()
		words := e.AllWords(cmd.Context(), wordsLimit)
		if len(words) == 0 {
			fmt.Println("No words found.")
			return nil
		}
		printTokens(words)
		return nil
	},
}

func init() {
	wordsCmd.Flags().IntVarP(&wordsLimit, "limit", "n", 25, "number of words to show (0 = all)")
	rootCmd.AddCommand(wordsCmd)
}

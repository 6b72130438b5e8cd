package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var contactsLimit int

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Rank contacts by message volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := loadBook()
		if err != nil {
			return err
		}
		e := newEngine()

		ranked := e.TopContacts(cmd.Context(), contactsLimit)
		if len(ranked) == 0 {
			fmt.Println("No contacts found.")
			return nil
		}
		for i, cc := range ranked {
			fmt.Printf("%3d. %-28s %d\n", i+1, labelFor(book, cc.HandleID), cc.MessageCount)
		}
		return nil
	},
}

func init() {
	contactsCmd.Flags().IntVarP(&contactsLimit, "limit", "n", 20, "number of contacts to show (0 = all)")
	rootCmd.AddCommand(contactsCmd)
}

package cmd

import (
	"github.com/nfrund/espresso/cmd/espresso-cli/internal/report"
	"github.com/nfrund/espresso/internal/domain"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <room>",
	Short: "Print the stored history of a room",
	Long: `Print the most recent stored messages of a room, oldest first.

Examples:
  espresso-cli history lobby
  espresso-cli history lobby --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room := args[0]

		repo, closer, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closer.Close()

		stored, err := repo.RecentMessages(cmd.Context(), room)
		if err != nil {
			return err
		}
		report.WriteHistory(cmd.OutOrStdout(), room, report.Chronological(stored, historyLimit), !noColor)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", domain.HistoryLimit, "Maximum number of messages to print")
}

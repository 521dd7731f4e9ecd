package cmd

import (
	"fmt"

	"github.com/nfrund/espresso/cmd/espresso-cli/internal/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <room>",
	Short: "Export the stored history of a room as JSON lines",
	Long: `Write the stored history of a room to a file, one JSON object per line,
oldest first.

Example:
  espresso-cli export lobby --out lobby.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room := args[0]
		if exportOut == "" {
			return fmt.Errorf("required flag --out not set")
		}

		repo, closer, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closer.Close()

		stored, err := repo.RecentMessages(cmd.Context(), room)
		if err != nil {
			return err
		}
		msgs := report.Chronological(stored, 0)
		if err := report.ExportJSONLines(afero.NewOsFs(), exportOut, msgs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages from %s to %s\n", len(msgs), room, exportOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (required)")
}

package cmd

import (
	"fmt"

	"github.com/nfrund/espresso/cmd/espresso-cli/internal/report"
	_ "github.com/nfrund/espresso/internal/modules/chat/topics"
	"github.com/nfrund/espresso/internal/topicmgr"
	"github.com/spf13/cobra"
)

var (
	topicsFormat string
	topicsModule string
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Explore the pub/sub topics used by the relay",
	Long: `The topics command lists the topics carried on the internal message bus.

Examples:
  espresso-cli topics list
  espresso-cli topics list --module chat --format json
  espresso-cli topics get chat.message.persist`,
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := topicmgr.Default()
		list := manager.List()
		if topicsModule != "" {
			list = manager.ListByModule(topicsModule)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No topics found")
			return nil
		}

		switch topicsFormat {
		case "json":
			return report.WriteTopicsJSON(cmd.OutOrStdout(), list)
		case "table":
			report.WriteTopicsTable(cmd.OutOrStdout(), list)
			return nil
		default:
			return fmt.Errorf("unsupported output format %q, use table or json", topicsFormat)
		}
	},
}

var topicsGetCmd = &cobra.Command{
	Use:   "get <topic-name>",
	Short: "Get detailed information about a specific topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, ok := topicmgr.Default().Get(args[0])
		if !ok {
			return fmt.Errorf("topic %q not found, use 'espresso-cli topics list' to see all topics", args[0])
		}
		report.WriteTopicDetails(cmd.OutOrStdout(), topic)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
	topicsCmd.AddCommand(topicsListCmd, topicsGetCmd)
	topicsListCmd.Flags().StringVarP(&topicsFormat, "format", "f", "table", "Output format (table, json)")
	topicsListCmd.Flags().StringVarP(&topicsModule, "module", "m", "", "Filter topics by module name")
}

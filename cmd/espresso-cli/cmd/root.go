package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nfrund/espresso/internal/config"
	"github.com/nfrund/espresso/internal/database"
	"github.com/nfrund/espresso/internal/domain"
	"github.com/nfrund/espresso/internal/logging"
	"github.com/spf13/cobra"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "espresso-cli",
	Short: "Espresso Chat operator CLI",
	Long: `espresso-cli inspects the Espresso Chat relay from the command line.

It reads the same .env file and environment variables as the server, so
history commands open the store selected by STORE_DRIVER. The badger store
can only be opened while the server is stopped.

Use "espresso-cli [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, "text", "warn")))
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
}

// openStore opens the configured message store. The caller must close the
// returned closer.
func openStore(ctx context.Context) (domain.MessageRepository, io.Closer, config.Provider, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.GetStoreDriver() == config.DriverMemory {
		slog.Warn("STORE_DRIVER is memory; history only lives inside the server process")
	}
	repo, closer, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s store: %w", cfg.GetStoreDriver(), err)
	}
	return repo, closer, cfg, nil
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FO214/remess/internal/config"
	"github.com/FO214/remess/internal/contacts"
	"github.com/FO214/remess/internal/stats"
)

var (
	cfgFile      string
	snapshotPath string
	verbose      bool
	cfg          *config.Config
	logger       *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "remess",
	Short: "Local iMessage history analytics",
	Long: `remess analyzes a local copy of the Messages database (chat.db):
message totals, per-contact and per-group statistics, word and emoji
frequencies, tapback tallies, and text search. Everything runs offline
against a read-only snapshot.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if snapshotPath != "" {
			cfg.Data.SnapshotPath = snapshotPath
		}
		return nil
	},
}

// Execute runs the root command with a background context.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newEngine builds the aggregation engine from the loaded config.
func newEngine() *stats.Engine {
	return stats.New(stats.Options{
		SnapshotPath:    cfg.Data.SnapshotPath,
		ExcludedHandles: cfg.Filter.ExcludedHandles,
		Logger:          logger,
	})
}

// loadBook loads the contacts mapping; a missing file is an empty book.
func loadBook() (*contacts.Book, error) {
	book, err := contacts.Load(cfg.Data.ContactsPath)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	return book, nil
}

// labelFor renders a handle through the contacts mapping, falling back to
// the formatted handle.
func labelFor(book *contacts.Book, handleID string) string {
	return book.DisplayName(handleID, stats.FormatHandle(handleID))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.remess/config.toml)")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "chat.db snapshot path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

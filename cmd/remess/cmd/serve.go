package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/FO214/remess/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API server",
	Long: `Run the local HTTP API exposing the same statistics as the CLI as
JSON endpoints under /api/v1. The server binds to loopback only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := loadBook()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.APIPort
		}
		server := api.NewServer(port, newEngine(), book, logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case <-cmd.Context().Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return cmd.Context().Err()
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/schoolbooks-connect/schoolbooks/internal/catalog"
	"github.com/schoolbooks-connect/schoolbooks/internal/handlers"
	"github.com/schoolbooks-connect/schoolbooks/internal/seed"
	"github.com/schoolbooks-connect/schoolbooks/internal/sheet"
	"github.com/schoolbooks-connect/schoolbooks/internal/telemetry"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port             string
		refreshDelay     time.Duration
		seedRefreshDelay time.Duration
		seedDelay        time.Duration
		corsOrigins      []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the library web server",
		Long: `Starts the library web interface and JSON API on the specified port.

Readers browse books by class, search the catalog and read PDFs in the
in-page reader. The admin dashboard at /admin edits the sheet.`,
		Example: `  # Start server on default port 8888
  schoolbooks serve

  # Start server on custom port
  schoolbooks serve --port 3000

  # Serve only the bundled catalog
  SCHOOLBOOKS_API_URL= schoolbooks serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				if p := os.Getenv("SCHOOLBOOKS_PORT"); p != "" {
					port = p
				}
			}

			shutdownTracing, err := telemetry.Setup(cmd.Context(), "schoolbooks")
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(ctx); err != nil {
					slog.Error("Tracer shutdown failed", "err", err)
				}
			}()

			store, err := openSettings(cmd)
			if err != nil {
				return err
			}
			client := sheet.NewClient(store)
			books := catalog.New(client, catalog.Fallback())
			books.RefreshAfter(0)

			handler := handlers.New(handlers.Config{
				Catalog:          books,
				Sheet:            client,
				Settings:         store,
				Seeder:           seed.New(client, seedDelay),
				SeedBooks:        catalog.Fallback(),
				RefreshDelay:     refreshDelay,
				SeedRefreshDelay: seedRefreshDelay,
				CORSOrigins:      corsOrigins,
				Version:          cmd.Root().Version,
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Schoolbooks available", "addr", addr, "url", "http://localhost"+addr, "settings", store.Path(), "endpoint", store.Endpoint() != "")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (env SCHOOLBOOKS_PORT)")
	cmd.Flags().DurationVar(&refreshDelay, "refresh-delay", handlers.DefaultRefreshDelay, "Wait before refetching the catalog after an edit")
	cmd.Flags().DurationVar(&seedRefreshDelay, "seed-refresh-delay", handlers.DefaultSeedRefreshDelay, "Wait before refetching the catalog after a demo upload")
	cmd.Flags().DurationVar(&seedDelay, "seed-delay", seed.DefaultDelay, "Pause between demo book uploads")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origins", []string{"*"}, "Origins allowed to call the JSON API")

	return cmd
}

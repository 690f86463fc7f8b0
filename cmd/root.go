package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/schoolbooks-connect/schoolbooks/internal/settings"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var (
		logLevel     string
		logFormat    string
		settingsPath string
	)

	cmd := &cobra.Command{
		Use:   "schoolbooks",
		Short: "Bangla school textbook library backed by a Google Sheet",
		Long: `Schoolbooks serves a browsable library of Bangla school textbooks.

The catalog lives in a Google Sheet exposed through an Apps Script web app.
When the sheet cannot be reached a bundled demo catalog is served instead.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if logLevel == "" {
				logLevel = os.Getenv("LOG_LEVEL")
			}
			return setupLogging(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (env LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	cmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (env "+settings.EnvSettingsPath+")")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newSettingsCmd())

	return cmd
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func setupLogging(w io.Writer, level, format string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch format {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// openSettings opens the settings file named by --settings, falling back to
// the default location
func openSettings(cmd *cobra.Command) (*settings.Store, error) {
	path, _ := cmd.Flags().GetString("settings")
	if path == "" {
		path = settings.DefaultPath()
	}
	store, err := settings.Open(path, settings.Defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	return store, nil
}

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schoolbooks-connect/schoolbooks/internal/catalog"
	"github.com/schoolbooks-connect/schoolbooks/internal/dataset"
	"github.com/schoolbooks-connect/schoolbooks/internal/seed"
	"github.com/schoolbooks-connect/schoolbooks/internal/sheet"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var (
		file  string
		delay time.Duration
		reset bool
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upload demo books to the sheet",
		Long: `Uploads the bundled demo books, or the books in --file, to the sheet one
at a time. Each upload gets a fresh id.

With --reset the sheet is cleared and refilled in a single request. This
removes every existing row and needs --yes.`,
		Example: `  # Upload the bundled demo books
  schoolbooks seed

  # Upload books from a dataset file
  schoolbooks seed --file books.parquet --delay 1s

  # Replace the whole sheet with the demo books
  schoolbooks seed --reset --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(cmd)
			if err != nil {
				return err
			}
			client := sheet.NewClient(store)
			if client.Endpoint() == "" {
				return sheet.ErrNoEndpoint
			}

			books := catalog.Fallback()
			if file != "" {
				books, err = dataset.Load(file)
				if err != nil {
					return err
				}
			}

			if reset {
				if !yes {
					return errors.New("--reset removes every row in the sheet, pass --yes to confirm")
				}
				if err := client.ResetAndSeed(cmd.Context(), books); err != nil {
					return err
				}
				slog.Info("Sheet reset", "books", len(books))
				fmt.Fprintf(cmd.OutOrStdout(), "Sheet reset with %d books\n", len(books))
				return nil
			}

			progress, err := seed.New(client, delay).Run(cmd.Context(), books)
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d of %d books (%d failed)\n", progress.Succeeded, progress.Total, progress.Failed)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Dataset of books to upload (.parquet, .jsonl, .json, .yaml)")
	cmd.Flags().DurationVar(&delay, "delay", seed.DefaultDelay, "Pause before each upload")
	cmd.Flags().BoolVar(&reset, "reset", false, "Clear the sheet and upload in one request")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm --reset")

	return cmd
}

package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/schoolbooks-connect/schoolbooks/internal/catalog"
	"github.com/schoolbooks-connect/schoolbooks/internal/dataset"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/schoolbooks-connect/schoolbooks/internal/sheet"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and export the book catalog",
	}

	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogExportCmd())

	return cmd
}

// loadCatalog fetches the catalog once, falling back to the bundled books
func loadCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	store, err := openSettings(cmd)
	if err != nil {
		return nil, err
	}
	books := catalog.New(sheet.NewClient(store), catalog.Fallback())
	books.Refresh(cmd.Context())
	return books, nil
}

func newCatalogListCmd() *cobra.Command {
	var (
		class   string
		subject string
		query   string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog",
		Example: `  # Every class 9 book
  schoolbooks catalog list --class 9

  # Admission physics books as JSON
  schoolbooks catalog list --class admission --subject পদার্থবিজ্ঞান --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			books := store.Books()
			if class != "" {
				books = catalog.ByClass(books, class)
			}
			if subject != "" {
				books = catalog.BySubject(books, subject)
			}
			if query != "" {
				books = catalog.Search(books, query)
			}

			if asJSON {
				return dataset.Write(cmd.OutOrStdout(), dataset.FormatJSON, books)
			}
			return printBooks(cmd, books)
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "Class level, 1 to 12 or admission")
	cmd.Flags().StringVar(&subject, "subject", "", "Exact subject name")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Free text search")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func printBooks(cmd *cobra.Command, books []models.Book) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLASS\tSUBJECT\tTITLE")
	for _, b := range books {
		class := models.CategoryLabel(b.ClassLevel)
		if b.SubCategory != "" {
			class += " / " + models.SubCategoryLabel(b.SubCategory)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, class, b.Subject, b.Title)
	}
	return tw.Flush()
}

func newCatalogExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog to a dataset file",
		Example: `  schoolbooks catalog export --out books.parquet
  schoolbooks catalog export --out books.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			store, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			books := store.Books()
			if err := dataset.Export(out, books); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d books to %s\n", len(books), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.parquet, .jsonl, .json, .yaml)")

	return cmd
}

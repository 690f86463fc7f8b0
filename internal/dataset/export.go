package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"gopkg.in/yaml.v3"
)

// Export writes books to path in the format given by its extension
func Export(path string, books []models.Book) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(file, format, books); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write encodes books to w
func Write(w io.Writer, format Format, books []models.Book) error {
	switch format {
	case FormatParquet:
		pw := parquet.NewGenericWriter[models.Book](w)
		if _, err := pw.Write(books); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("failed to finish parquet file: %w", err)
		}
	case FormatJSONL:
		bw := bufio.NewWriter(w)
		enc := json.NewEncoder(bw)
		enc.SetEscapeHTML(false)
		for _, b := range books {
			if err := enc.Encode(b); err != nil {
				return fmt.Errorf("failed to encode book %s: %w", b.ID, err)
			}
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("failed to write jsonl: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(books); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(books); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to finish yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}

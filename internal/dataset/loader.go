// Package dataset reads and writes book lists as Parquet, JSON Lines, JSON or YAML.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"gopkg.in/yaml.v3"
)

// Format is a supported file format
type Format string

const (
	FormatParquet Format = "parquet"
	FormatJSONL   Format = "jsonl"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// FormatOf detects the format from a file extension
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return FormatParquet, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl, .json, .yaml)", ext)
	}
}

// Load reads books from a dataset file
func Load(path string) ([]models.Book, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var books []models.Book
	switch format {
	case FormatParquet:
		books, err = loadParquet(path)
	case FormatJSONL:
		books, err = loadJSONL(path)
	case FormatJSON:
		books, err = loadDocument(path, json.Unmarshal)
	case FormatYAML:
		books, err = loadDocument(path, yaml.Unmarshal)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded dataset", "path", path, "format", format, "books", len(books))
	return books, nil
}

func loadDocument(path string, unmarshal func([]byte, any) error) ([]models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	var books []models.Book
	if err := unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return books, nil
}

func loadJSONL(path string) ([]models.Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var books []models.Book
	scanner := bufio.NewScanner(file)

	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var book models.Book
		if err := json.Unmarshal(line, &book); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		books = append(books, book)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}
	return books, nil
}

func loadParquet(path string) ([]models.Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[models.Book](pf)
	defer reader.Close()

	books := make([]models.Book, 0, pf.NumRows())
	rows := make([]models.Book, 128)
	for {
		n, err := reader.Read(rows)
		books = append(books, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return books, nil
}

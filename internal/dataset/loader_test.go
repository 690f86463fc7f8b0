package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/schoolbooks-connect/schoolbooks/internal/models"
)

func sampleBooks() []models.Book {
	return []models.Book{
		{
			ID:           "1",
			Title:        "গণিত পার্ট ১",
			Subject:      "গণিত",
			ClassLevel:   "10",
			ThumbnailURL: "https://picsum.photos/300/400?random=1",
			PDFURL:       "https://drive.google.com/file/d/abc/view",
			Description:  "বীজগণিত",
		},
		{
			ID:          "2",
			Title:       "প্রশ্ন ব্যাংক",
			Subject:     "রসায়ন",
			ClassLevel:  "admission",
			SubCategory: "question_bank",
			PublishYear: "2024",
		},
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{path: "books.parquet", expected: FormatParquet},
		{path: "books.JSONL", expected: FormatJSONL},
		{path: "books.json", expected: FormatJSON},
		{path: "books.yml", expected: FormatYAML},
		{path: "books.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s", tt.path)
				}
				return
			}
			if err != nil || got != tt.expected {
				t.Errorf("Expected %s, got %s (err %v)", tt.expected, got, err)
			}
		})
	}
}

func TestExportThenLoad(t *testing.T) {
	dir := t.TempDir()
	books := sampleBooks()

	for _, name := range []string{"out.parquet", "out.jsonl", "out.json", "sub/out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Export(path, books); err != nil {
				t.Fatalf("Export failed: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(loaded) != len(books) {
				t.Fatalf("Expected %d books, got %d", len(books), len(loaded))
			}
			for i := range books {
				if loaded[i] != books[i] {
					t.Errorf("Book %d mismatch:\nexpected %+v\ngot      %+v", i, books[i], loaded[i])
				}
			}
		})
	}
}

func TestLoadJSONLSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	content := `{"id":"1","title":"a","subject":"s","classLevel":"1"}

{"id":"2","title":"b","subject":"s","classLevel":"2"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	books, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(books) != 2 || books[1].ClassLevel != "2" {
		t.Errorf("Unexpected books: %+v", books)
	}
}

func TestLoadJSONLReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":\"1\"}\n{broken\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if got := err.Error(); !strings.Contains(got, "line 2") {
		t.Errorf("Expected error to mention line 2, got %s", got)
	}
}

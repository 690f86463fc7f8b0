package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/schoolbooks-connect/schoolbooks/internal/dataset"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// run executes the root command offline against a temporary settings file
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SCHOOLBOOKS_API_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--settings", filepath.Join(t.TempDir(), "settings.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCatalogListOffline(t *testing.T) {
	out, err := run(t, "catalog", "list", "--class", "admission", "--json")
	require.NoError(t, err)

	var books []models.Book
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.NotEmpty(t, books)
	for _, b := range books {
		assert.Equal(t, models.AdmissionLevel, b.ClassLevel)
	}

	out, err = run(t, "catalog", "list", "--class", "10")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Len(t, lines, 4)
}

func TestCatalogExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "books.jsonl")
	_, err := run(t, "catalog", "export", "--out", path)
	require.NoError(t, err)

	books, err := dataset.Load(path)
	require.NoError(t, err)
	assert.Len(t, books, 13)

	_, err = run(t, "catalog", "export")
	assert.Error(t, err)
}

func TestSeedRequiresEndpoint(t *testing.T) {
	_, err := run(t, "seed")
	assert.Error(t, err)
}

func TestSettingsCommands(t *testing.T) {
	t.Setenv("SCHOOLBOOKS_API_URL", "")
	path := filepath.Join(t.TempDir(), "settings.yaml")

	exec := func(args ...string) string {
		var out bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append([]string{"--settings", path}, args...))
		require.NoError(t, root.ExecuteContext(context.Background()))
		return out.String()
	}

	assert.Contains(t, exec("settings", "show"), "(offline)")

	out := exec("settings", "set-endpoint", "https://script.google.com/macros/s/abc/exec?x=1")
	assert.Contains(t, out, "https://script.google.com/macros/s/abc/exec\n")

	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.Contains(t, exec("settings", "show"), "macros/s/abc/exec")

	exec("settings", "reset")
	assert.Contains(t, exec("settings", "show"), "(offline)")
}

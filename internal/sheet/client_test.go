package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBooksCoercesFields(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("t")
		_, _ = io.WriteString(w, `[
			{"id": 1700000000000, "title": "গণিত", "subject": "গণিত", "classLevel": 10, "pdfUrl": "https://drive.google.com/file/d/abc/view", "publishYear": 2024},
			{"title": "", "subject": null, "classLevel": "admission", "subCategory": "concept"},
			{"id": "x", "title": true, "subject": {"nested": 1}, "classLevel": 0},
			"not an object"
		]`)
	}))
	defer srv.Close()

	c := NewClient(StaticEndpoint(srv.URL))
	c.now = func() time.Time { return time.UnixMilli(42) }

	books, err := c.FetchBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 4)
	assert.Equal(t, "42", gotQuery)

	assert.Equal(t, "1700000000000", books[0].ID)
	assert.Equal(t, "10", books[0].ClassLevel)
	assert.Equal(t, "2024", books[0].PublishYear)
	assert.Equal(t, "গণিত", books[0].Title)

	assert.NotEmpty(t, books[1].ID)
	assert.Equal(t, "Untitled", books[1].Title)
	assert.Equal(t, "General", books[1].Subject)
	assert.Equal(t, "admission", books[1].ClassLevel)
	assert.Equal(t, "concept", books[1].SubCategory)
	assert.Equal(t, "", books[1].Description)

	assert.Equal(t, "true", books[2].Title)
	assert.Equal(t, "General", books[2].Subject)
	assert.Equal(t, "1", books[2].ClassLevel)

	assert.Equal(t, "Untitled", books[3].Title)
	assert.NotEqual(t, books[1].ID, books[3].ID)
}

func TestFetchBooksNonArrayIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "error", "message": "Script lock timeout"}`)
	}))
	defer srv.Close()

	books, err := NewClient(StaticEndpoint(srv.URL)).FetchBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NotNil(t, books)
}

func TestFetchBooksErrors(t *testing.T) {
	t.Run("no endpoint", func(t *testing.T) {
		_, err := NewClient(StaticEndpoint("")).FetchBooks(context.Background())
		assert.True(t, errors.Is(err, ErrNoEndpoint))
	})

	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewClient(StaticEndpoint(srv.URL)).FetchBooks(context.Background())
		assert.ErrorContains(t, err, "status 500")
	})

	t.Run("malformed json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>not json</html>`)
		}))
		defer srv.Close()

		_, err := NewClient(StaticEndpoint(srv.URL)).FetchBooks(context.Background())
		assert.Error(t, err)
	})
}

func TestWritesSendEnvelope(t *testing.T) {
	var bodies []map[string]any
	var contentTypes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		contentTypes = append(contentTypes, r.Header.Get("Content-Type"))
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Errorf("Invalid body: %v", err)
		}
		bodies = append(bodies, m)
		// the client never reads this
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(StaticEndpoint(srv.URL))
	ctx := context.Background()
	book := models.Book{ID: "7", Title: "পৌরনীতি", Subject: "পৌরনীতি", ClassLevel: "9", PDFURL: "https://example.com/a.pdf"}

	require.NoError(t, c.Create(ctx, book))
	require.NoError(t, c.Update(ctx, book))
	require.NoError(t, c.Delete(ctx, "7"))
	require.NoError(t, c.ResetAndSeed(ctx, []models.Book{book}))

	require.Len(t, bodies, 4)
	for _, ct := range contentTypes {
		assert.Equal(t, "text/plain;charset=utf-8", ct)
	}

	assert.Equal(t, "create", bodies[0]["action"])
	assert.Equal(t, "7", bodies[0]["id"])
	assert.Equal(t, "পৌরনীতি", bodies[0]["title"])
	assert.Equal(t, "9", bodies[0]["classLevel"])

	assert.Equal(t, "update", bodies[1]["action"])

	assert.Equal(t, map[string]any{"action": "delete", "id": "7"}, bodies[2])

	assert.Equal(t, "reset_and_seed", bodies[3]["action"])
	seeded, ok := bodies[3]["books"].([]any)
	require.True(t, ok)
	assert.Len(t, seeded, 1)
}

func TestUpdateSendsClearedFields(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	book := models.Book{ID: "1", Title: "T", Subject: "S", ClassLevel: "10", PDFURL: "p"}
	require.NoError(t, NewClient(StaticEndpoint(srv.URL)).Update(context.Background(), book))

	tests := []string{`"subCategory":""`, `"description":""`, `"publishYear":""`, `"thumbnailUrl":""`}
	for _, want := range tests {
		t.Run(want, func(t *testing.T) {
			assert.Contains(t, string(body), want)
		})
	}
}

func TestWriteTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(StaticEndpoint(url)).Create(context.Background(), models.Book{ID: "1"})
	assert.Error(t, err)

	err = NewClient(StaticEndpoint("")).Delete(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrNoEndpoint))
}

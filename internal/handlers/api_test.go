package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/schoolbooks-connect/schoolbooks/internal/drive"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/schoolbooks-connect/schoolbooks/internal/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, testBooks())

	rec := s.get(t, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestListBooksAPI(t *testing.T) {
	s := newTestServer(t, testBooks())

	tests := []struct {
		name  string
		query url.Values
		ids   []string
	}{
		{name: "all", query: url.Values{}, ids: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}},
		{name: "class", query: url.Values{"class": {"9"}}, ids: []string{"2", "4", "5"}},
		{name: "class and subject", query: url.Values{"class": {"9"}, "subject": {"বিজ্ঞান"}}, ids: []string{"2", "5"}},
		{name: "free text", query: url.Values{"q": {"ইতিহাস"}}, ids: []string{"3"}},
		{name: "no match", query: url.Values{"class": {"4"}}, ids: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.get(t, "/api/books?"+tt.query.Encode())
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Total int           `json:"total"`
				Books []models.Book `json:"books"`
			}
			decode(t, rec, &body)

			ids := []string{}
			for _, b := range body.Books {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, len(tt.ids), body.Total)
		})
	}
}

func TestGetBookAPI(t *testing.T) {
	s := newTestServer(t, testBooks())

	rec := s.get(t, "/api/books/7")
	require.Equal(t, http.StatusOK, rec.Code)
	var book models.Book
	decode(t, rec, &book)
	assert.Equal(t, "textbook", book.SubCategory)

	rec = s.get(t, "/api/books/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoriesAPI(t *testing.T) {
	s := newTestServer(t, testBooks())

	rec := s.get(t, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Classes       []models.Category    `json:"classes"`
		SubCategories []models.SubCategory `json:"subCategories"`
	}
	decode(t, rec, &body)
	assert.Len(t, body.Classes, 13)
	assert.Equal(t, models.AdmissionLevel, body.Classes[12].Value)
	assert.Len(t, body.SubCategories, len(models.SubCategories))
}

func TestCatalogRefreshAPI(t *testing.T) {
	s := newTestServer(t, testBooks())

	var status struct {
		Live  bool `json:"live"`
		Count int  `json:"count"`
	}
	decode(t, s.get(t, "/api/catalog"), &status)
	assert.False(t, status.Live)

	req := httptest.NewRequest(http.MethodPost, "/api/catalog/refresh", nil)
	rec := s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &status)
	assert.True(t, status.Live)
	assert.Equal(t, len(testBooks()), status.Count)
}

func postEvent(t *testing.T, s *testServer, id string, st viewer.State, ev viewer.Event) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]any{"state": st, "event": ev})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/reader/"+id+"/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req)
}

func TestReaderEventAPI(t *testing.T) {
	s := newTestServer(t, testBooks())
	ready := viewer.State{
		Page:        3,
		TotalPages:  3,
		Scale:       1,
		Mode:        viewer.ModeCustom,
		Status:      viewer.StatusReady,
		RenderWidth: 800,
	}

	var out struct {
		State      viewer.State `json:"state"`
		Query      string       `json:"query"`
		PageWidth  int          `json:"pageWidth"`
		Transform  string       `json:"transform"`
		Transition string       `json:"transition"`
	}

	rec := postEvent(t, s, "1", ready, viewer.Event{Kind: viewer.EventNext})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &out)
	assert.Equal(t, 3, out.State.Page)
	q, err := url.ParseQuery(out.Query)
	require.NoError(t, err)
	assert.Equal(t, "3", q.Get(viewer.QueryPage))
	assert.Equal(t, "ready", q.Get(viewer.QueryStatus))

	rec = postEvent(t, s, "1", ready, viewer.Event{Kind: viewer.EventZoomIn})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &out)
	assert.Equal(t, 1.25, out.State.Scale)
	assert.Equal(t, 1000, out.PageWidth)
	assert.Equal(t, "none", out.Transform)
	assert.Contains(t, out.Query, "scale=1.25")

	rec = postEvent(t, s, "1", ready, viewer.Event{Kind: viewer.EventFailed, Error: "bad xref"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &out)
	assert.Equal(t, viewer.StatusFailed, out.State.Status)
	assert.Contains(t, out.Query, "status=failed")

	rec = postEvent(t, s, "1", ready, viewer.Event{Kind: viewer.EventFullscreenChange, Granted: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &out)
	assert.True(t, out.State.Fullscreen)
	assert.Contains(t, out.Query, "fs=1")

	rec = postEvent(t, s, "1", out.State, viewer.Event{Kind: viewer.EventFullscreenChange})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out.State = viewer.State{}
	decode(t, rec, &out)
	assert.False(t, out.State.Fullscreen)
	assert.Equal(t, 3, out.State.Page)

	rec = postEvent(t, s, "missing", ready, viewer.Event{Kind: viewer.EventNext})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postEvent(t, s, "1", ready, viewer.Event{Kind: "jump"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestNormalizeLinkAPI(t *testing.T) {
	s := newTestServer(t, testBooks())

	link := "https://drive.google.com/file/d/abc123/view?usp=sharing"
	rec := s.get(t, "/api/links?"+url.Values{"url": {link}}.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	var links drive.Links
	decode(t, rec, &links)
	assert.Equal(t, "abc123", links.ID)
	assert.Equal(t, "https://drive.google.com/file/d/abc123/preview", links.Embed)

	rec = s.get(t, "/api/links")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSeedProgressAPI(t *testing.T) {
	s := newTestServer(t, testBooks())

	rec := s.get(t, "/api/seed")
	require.Equal(t, http.StatusOK, rec.Code)

	var progress struct {
		Running bool `json:"running"`
		Total   int  `json:"total"`
	}
	decode(t, rec, &progress)
	assert.False(t, progress.Running)
	assert.Zero(t, progress.Total)
}

// Package sheet talks to the spreadsheet endpoint that stores the catalog.
//
// The endpoint is a Google Apps Script web app. Reads are plain GETs returning a
// JSON array of rows. Writes are POSTs whose response is never inspected: a write
// succeeds when the request was delivered, not when the sheet confirms it.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNoEndpoint is returned when no sheet endpoint is configured
var ErrNoEndpoint = errors.New("no sheet endpoint configured")

// Write actions understood by the sheet script
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionResetAndSeed = "reset_and_seed"
)

// EndpointSource supplies the current endpoint URL. An empty URL means offline.
type EndpointSource interface {
	Endpoint() string
}

// StaticEndpoint is a fixed endpoint URL
type StaticEndpoint string

func (s StaticEndpoint) Endpoint() string { return string(s) }

// Client is a sheet API client
type Client struct {
	endpoints  EndpointSource
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a new sheet client
func NewClient(endpoints EndpointSource) *Client {
	return &Client{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
}

// Endpoint returns the endpoint the client currently targets
func (c *Client) Endpoint() string {
	return c.endpoints.Endpoint()
}

// FetchBooks reads every row from the sheet.
//
// Rows are returned in sheet order. A response that is valid JSON but not an
// array yields an empty slice and no error.
func (c *Client) FetchBooks(ctx context.Context) ([]models.Book, error) {
	endpoint := c.endpoints.Endpoint()
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet endpoint: %w", err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sheet returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode sheet response: %w", err)
	}

	rows, ok := raw.([]any)
	if !ok {
		slog.Warn("Sheet response is not an array", "type", fmt.Sprintf("%T", raw))
		return []models.Book{}, nil
	}

	books := make([]models.Book, 0, len(rows))
	for _, row := range rows {
		obj, _ := row.(map[string]any)
		books = append(books, bookFromRow(obj))
	}

	slog.Debug("Fetched books from sheet", "count", len(books))
	return books, nil
}

func bookFromRow(row map[string]any) models.Book {
	id := field(row, "id", "")
	if id == "" {
		id = uuid.NewString()
	}
	return models.Book{
		ID:           id,
		Title:        field(row, "title", "Untitled"),
		Subject:      field(row, "subject", "General"),
		ClassLevel:   field(row, "classLevel", "1"),
		SubCategory:  field(row, "subCategory", ""),
		ThumbnailURL: field(row, "thumbnailUrl", ""),
		PDFURL:       field(row, "pdfUrl", ""),
		Description:  field(row, "description", ""),
		PublishYear:  field(row, "publishYear", ""),
	}
}

// field coerces a row value to a string. Missing, empty, zero, false and
// non-scalar values all fall back to def.
func field(row map[string]any, key, def string) string {
	switch v := row[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		if v != 0 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	case bool:
		if v {
			return "true"
		}
	}
	return def
}

type bookEnvelope struct {
	Action string `json:"action"`
	models.Book
}

type deleteEnvelope struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

type seedEnvelope struct {
	Action string        `json:"action"`
	Books  []models.Book `json:"books"`
}

// Create appends a row
func (c *Client) Create(ctx context.Context, book models.Book) error {
	return c.post(ctx, ActionCreate, bookEnvelope{Action: ActionCreate, Book: book})
}

// Update replaces the row with the book's id
func (c *Client) Update(ctx context.Context, book models.Book) error {
	return c.post(ctx, ActionUpdate, bookEnvelope{Action: ActionUpdate, Book: book})
}

// Delete removes the row with the given id
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.post(ctx, ActionDelete, deleteEnvelope{Action: ActionDelete, ID: id})
}

// ResetAndSeed clears the sheet and writes books in one request.
// It destroys every existing row.
func (c *Client) ResetAndSeed(ctx context.Context, books []models.Book) error {
	return c.post(ctx, ActionResetAndSeed, seedEnvelope{Action: ActionResetAndSeed, Books: books})
}

func (c *Client) post(ctx context.Context, action string, payload any) error {
	endpoint := c.endpoints.Endpoint()
	if endpoint == "" {
		return ErrNoEndpoint
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}
	// the script only accepts simple requests, so no application/json here
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s to sheet: %w", action, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	slog.Debug("Sheet write delivered", "action", action, "status", resp.StatusCode)
	return nil
}

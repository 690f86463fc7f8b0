package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/schoolbooks-connect/schoolbooks/internal/catalog"
	"github.com/schoolbooks-connect/schoolbooks/internal/document"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/schoolbooks-connect/schoolbooks/internal/seed"
	"github.com/schoolbooks-connect/schoolbooks/internal/settings"
	"github.com/schoolbooks-connect/schoolbooks/internal/storage"
	"github.com/schoolbooks-connect/schoolbooks/internal/thumbs"
)

const (
	DefaultRefreshDelay     = 2500 * time.Millisecond
	DefaultSeedRefreshDelay = 3 * time.Second
)

// SheetWriter sends row changes to the sheet
type SheetWriter interface {
	Endpoint() string
	Create(ctx context.Context, book models.Book) error
	Update(ctx context.Context, book models.Book) error
	Delete(ctx context.Context, id string) error
}

// Config wires a Handler
type Config struct {
	Catalog   *catalog.Store
	Sheet     SheetWriter
	Settings  *settings.Store
	Seeder    *seed.Seeder
	Documents *document.Prober
	Thumbs    *thumbs.Fetcher
	Sessions  *storage.SessionStore

	// SeedBooks is uploaded by the admin seed action
	SeedBooks []models.Book

	RefreshDelay     time.Duration
	SeedRefreshDelay time.Duration
	CORSOrigins      []string
	Version          string
}

type Handler struct {
	catalog   *catalog.Store
	sheet     SheetWriter
	settings  *settings.Store
	seeder    *seed.Seeder
	documents *document.Prober
	thumbs    *thumbs.Fetcher
	sessions  *storage.SessionStore

	seedBooks        []models.Book
	refreshDelay     time.Duration
	seedRefreshDelay time.Duration
	corsOrigins      []string
	version          string

	pages pages
}

func New(cfg Config) *Handler {
	h := &Handler{
		catalog:          cfg.Catalog,
		sheet:            cfg.Sheet,
		settings:         cfg.Settings,
		seeder:           cfg.Seeder,
		documents:        cfg.Documents,
		thumbs:           cfg.Thumbs,
		sessions:         cfg.Sessions,
		seedBooks:        cfg.SeedBooks,
		refreshDelay:     cfg.RefreshDelay,
		seedRefreshDelay: cfg.SeedRefreshDelay,
		corsOrigins:      cfg.CORSOrigins,
		version:          cfg.Version,
		pages:            parsePages(),
	}
	if h.documents == nil {
		h.documents = document.NewProber()
	}
	if h.thumbs == nil {
		h.thumbs = thumbs.NewFetcher()
	}
	if h.sessions == nil {
		h.sessions = storage.New(storage.DefaultTTL)
	}
	if h.refreshDelay <= 0 {
		h.refreshDelay = DefaultRefreshDelay
	}
	if h.seedRefreshDelay <= 0 {
		h.seedRefreshDelay = DefaultSeedRefreshDelay
	}
	if len(h.corsOrigins) == 0 {
		h.corsOrigins = []string{"*"}
	}
	if h.version == "" {
		h.version = "dev"
	}
	return h
}

// Response helpers
func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Book helpers
func (h *Handler) findBook(w http.ResponseWriter, r *http.Request, id string) (models.Book, bool) {
	book, err := catalog.Find(h.catalog.Books(), id)
	if err != nil {
		slog.Debug("Book lookup failed", "id", id, "err", err)
		h.renderNotFound(w, r)
		return models.Book{}, false
	}
	return book, true
}

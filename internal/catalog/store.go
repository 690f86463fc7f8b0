package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/schoolbooks-connect/schoolbooks/internal/sheet"
	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

var loadFallback = sync.OnceValues(func() ([]models.Book, error) {
	var books []models.Book
	if err := yaml.Unmarshal(fallbackYAML, &books); err != nil {
		return nil, fmt.Errorf("failed to parse bundled catalog: %w", err)
	}
	return books, nil
})

// Fallback returns a copy of the bundled demo catalog
func Fallback() []models.Book {
	books, err := loadFallback()
	if err != nil {
		panic(err)
	}
	return slices.Clone(books)
}

// Source reads the full row set from the remote sheet
type Source interface {
	FetchBooks(ctx context.Context) ([]models.Book, error)
}

// Status describes the snapshot currently served
type Status struct {
	Live        bool      `json:"live"`
	Count       int       `json:"count"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Loading     bool      `json:"loading"`
}

// Store holds the in-memory catalog snapshot.
//
// Every refresh replaces the snapshot whole. Refreshes are never cancelled by
// newer ones, so when two overlap the one that finishes last wins.
type Store struct {
	source   Source
	fallback []models.Book

	mu          sync.RWMutex
	books       []models.Book
	live        bool
	refreshedAt time.Time

	inFlight atomic.Int32
}

// New creates a store serving fallback until the first refresh
func New(source Source, fallback []models.Book) *Store {
	return &Store{
		source:   source,
		fallback: fallback,
		books:    slices.Clone(fallback),
	}
}

// Books returns a copy of the current snapshot
func (s *Store) Books() []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.books)
}

// IsLive reports whether the snapshot came from the sheet
func (s *Store) IsLive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Status returns a summary of the current snapshot
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Live:        s.live,
		Count:       len(s.books),
		RefreshedAt: s.refreshedAt,
		Loading:     s.inFlight.Load() > 0,
	}
}

// Refresh refetches the catalog from the sheet.
//
// An unconfigured endpoint, a failed fetch or an empty sheet all leave the store
// serving the bundled catalog marked as not live. These are not reported as errors.
func (s *Store) Refresh(ctx context.Context) Status {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	var books []models.Book
	var err error
	if s.source != nil {
		books, err = s.source.FetchBooks(ctx)
	} else {
		err = sheet.ErrNoEndpoint
	}

	live := false
	switch {
	case errors.Is(err, sheet.ErrNoEndpoint):
		slog.Info("No sheet endpoint, serving bundled catalog")
	case err != nil:
		slog.Warn("Catalog fetch failed, serving bundled catalog", "err", err)
	case len(books) == 0:
		slog.Warn("Sheet returned no books, serving bundled catalog")
	default:
		live = true
	}

	if live {
		slices.Reverse(books)
		books = dedupe(books)
	} else {
		books = slices.Clone(s.fallback)
	}

	s.mu.Lock()
	s.books = books
	s.live = live
	s.refreshedAt = time.Now()
	status := Status{
		Live:        live,
		Count:       len(books),
		RefreshedAt: s.refreshedAt,
		Loading:     s.inFlight.Load() > 1,
	}
	s.mu.Unlock()

	slog.Info("Catalog refreshed", "live", live, "count", len(books))
	return status
}

// RefreshAfter schedules a background refresh once delay has passed
func (s *Store) RefreshAfter(delay time.Duration) *time.Timer {
	return time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Refresh(ctx)
	})
}

func dedupe(books []models.Book) []models.Book {
	seen := make(map[string]bool, len(books))
	out := books[:0]
	for _, b := range books {
		if seen[b.ID] {
			slog.Warn("Dropping duplicate book id", "id", b.ID, "title", b.Title)
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	return out
}

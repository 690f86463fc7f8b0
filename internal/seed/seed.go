// Package seed uploads a batch of books to the sheet one row at a time.
//
// The sheet script serializes writes behind a lock with a bounded wait, so
// uploads are sent sequentially with a pause before each request.
package seed

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/schoolbooks-connect/schoolbooks/internal/models"
)

const DefaultDelay = 800 * time.Millisecond

var (
	ErrAlreadyRunning  = errors.New("seed already running")
	ErrNothingUploaded = errors.New("no book was uploaded")
)

// Writer creates one row
type Writer interface {
	Create(ctx context.Context, book models.Book) error
}

// Progress describes the current or most recent run
type Progress struct {
	Running    bool      `json:"running"`
	Total      int       `json:"total"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"startedAt,omitzero"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
	LastError  string    `json:"lastError,omitempty"`
}

// Seeder runs uploads, at most one at a time
type Seeder struct {
	writer Writer
	delay  time.Duration
	now    func() time.Time

	running sync.Mutex

	mu       sync.RWMutex
	progress Progress
}

// New creates a seeder that waits delay before every write
func New(w Writer, delay time.Duration) *Seeder {
	return &Seeder{
		writer: w,
		delay:  delay,
		now:    time.Now,
	}
}

// Progress returns a copy of the run progress
func (s *Seeder) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Run uploads books and blocks until done. Each book gets a fresh id built
// from the current time in milliseconds followed by its index. A failed write
// is counted and the run continues. The run fails only if nothing was
// uploaded or ctx was cancelled.
func (s *Seeder) Run(ctx context.Context, books []models.Book) (Progress, error) {
	if !s.running.TryLock() {
		return s.Progress(), ErrAlreadyRunning
	}
	defer s.running.Unlock()
	return s.run(ctx, books)
}

// Start runs the upload in the background and calls done when it finishes.
// It returns ErrAlreadyRunning without starting if a run is in progress.
func (s *Seeder) Start(ctx context.Context, books []models.Book, done func(Progress, error)) error {
	if !s.running.TryLock() {
		return ErrAlreadyRunning
	}
	s.reset(len(books))

	go func() {
		defer s.running.Unlock()
		p, err := s.run(ctx, books)
		if done != nil {
			done(p, err)
		}
	}()
	return nil
}

func (s *Seeder) run(ctx context.Context, books []models.Book) (Progress, error) {
	s.reset(len(books))
	base := strconv.FormatInt(s.now().UnixMilli(), 10)
	slog.Info("Seed started", "books", len(books), "delay", s.delay)

	for i, book := range books {
		if err := sleep(ctx, s.delay); err != nil {
			return s.finish(err), err
		}

		book.ID = base + strconv.Itoa(i)
		err := s.writer.Create(ctx, book)
		p := s.record(err)
		if err != nil {
			slog.Warn("Seed upload failed", "title", book.Title, "err", err)
			continue
		}
		slog.Info("Seed upload sent", "done", p.Attempted, "total", p.Total)
	}

	p := s.finish(nil)
	if p.Total > 0 && p.Succeeded == 0 {
		return p, ErrNothingUploaded
	}
	slog.Info("Seed finished", "succeeded", p.Succeeded, "failed", p.Failed)
	return p, nil
}

func (s *Seeder) reset(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = Progress{
		Running:   true,
		Total:     total,
		StartedAt: s.now(),
	}
}

func (s *Seeder) record(err error) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Attempted++
	if err != nil {
		s.progress.Failed++
		s.progress.LastError = err.Error()
	} else {
		s.progress.Succeeded++
	}
	return s.progress
}

func (s *Seeder) finish(err error) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Running = false
	s.progress.FinishedAt = s.now()
	if err != nil {
		s.progress.LastError = err.Error()
	}
	return s.progress
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

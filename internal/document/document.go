// Package document fetches the PDFs behind catalog links. It proxies them to
// the in-page renderer, which cannot load Drive downloads cross-origin, and
// reads their page count.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/patrickmn/go-cache"
	"github.com/schoolbooks-connect/schoolbooks/internal/drive"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrNotPDF   = errors.New("not a PDF document")
	ErrTooLarge = errors.New("document too large")
	ErrNoPages  = errors.New("document has no pages")
)

const (
	DefaultMaxSize = 64 << 20

	infoTTL    = time.Hour
	failureTTL = time.Minute
)

var pdfMagic = []byte("%PDF-")

// Info describes a fetched document
type Info struct {
	Pages int   `json:"pages"`
	Size  int64 `json:"size"`
}

// Prober downloads documents and inspects them
type Prober struct {
	HTTPClient *http.Client
	MaxSize    int64

	results *cache.Cache
}

// NewProber creates a new document prober
func NewProber() *Prober {
	return &Prober{
		HTTPClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		MaxSize: DefaultMaxSize,
		results: cache.New(infoTTL, 10*time.Minute),
	}
}

type failure struct{ err error }

// Probe downloads the document behind a catalog link and counts its pages.
// Results are cached per download URL; failures are cached briefly.
func (p *Prober) Probe(ctx context.Context, link string) (Info, error) {
	src := drive.DownloadURL(link)
	if cached, ok := p.results.Get(src); ok {
		switch v := cached.(type) {
		case Info:
			return v, nil
		case failure:
			return Info{}, v.err
		}
	}

	info, err := p.probe(ctx, src)
	if err != nil {
		if ctx.Err() == nil {
			p.results.Set(src, failure{err}, failureTTL)
		}
		return Info{}, err
	}

	p.results.Set(src, info, cache.DefaultExpiration)
	slog.Debug("Probed document", "url", src, "pages", info.Pages, "size", info.Size)
	return info, nil
}

func (p *Prober) probe(ctx context.Context, src string) (Info, error) {
	resp, err := p.get(ctx, src)
	if err != nil {
		return Info{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.MaxSize+1))
	if err != nil {
		return Info{}, fmt.Errorf("failed to read document: %w", err)
	}
	if int64(len(data)) > p.MaxSize {
		return Info{}, ErrTooLarge
	}

	// Drive answers large files with an HTML confirmation page instead of the bytes
	if !bytes.HasPrefix(data, pdfMagic) {
		return Info{}, ErrNotPDF
	}

	pages, err := CountPages(data)
	if err != nil {
		return Info{}, err
	}
	return Info{Pages: pages, Size: int64(len(data))}, nil
}

// CountPages reads the page count from the document catalog
func CountPages(data []byte) (n int, err error) {
	defer func() {
		// the pdf reader panics on some malformed object graphs
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	n = r.NumPage()
	if n < 1 {
		return 0, ErrNoPages
	}
	return n, nil
}

// Stream copies the document behind a catalog link to w
func (p *Prober) Stream(ctx context.Context, w http.ResponseWriter, link string) error {
	resp, err := p.get(ctx, drive.DownloadURL(link))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.ContentLength > p.MaxSize {
		return ErrTooLarge
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}

	n, err := io.Copy(w, io.LimitReader(resp.Body, p.MaxSize))
	if err != nil {
		return fmt.Errorf("failed to stream document after %d bytes: %w", n, err)
	}
	return nil
}

func (p *Prober) get(ctx context.Context, src string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create document request: %w", err)
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("document host returned status %d", resp.StatusCode)
	}
	return resp, nil
}

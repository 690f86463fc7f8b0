// Package thumbs fetches book covers and re-encodes them as uniform thumbnails.
package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	Width   = 300
	Height  = 400
	Quality = 80

	maxCoverSize = 10 << 20
	// anything smaller is a tracking pixel or an error placeholder
	minCoverSize = 100
)

// Fetcher retrieves covers and caches the resized result
type Fetcher struct {
	HTTPClient *http.Client
	cache      *cache.Cache
}

// NewFetcher creates a new cover fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cache: cache.New(6*time.Hour, 30*time.Minute),
	}
}

// Get returns a Width x Height JPEG of the cover at url
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if v, ok := f.cache.Get(url); ok {
		return v.([]byte), nil
	}

	data, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	thumb, err := Resize(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	f.cache.Set(url, thumb, cache.DefaultExpiration)
	slog.Debug("Cached cover thumbnail", "url", url, "source_bytes", len(data), "thumb_bytes", len(thumb))
	return thumb, nil
}

// Resize decodes an image and crops it to fill Width x Height
func Resize(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}

	thumb := imaging.Fill(img, Width, Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cover request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cover URL returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read cover data: %w", err)
	}
	if len(data) > maxCoverSize {
		return nil, fmt.Errorf("cover image too large")
	}
	if len(data) < minCoverSize {
		return nil, fmt.Errorf("cover image too small (likely placeholder), size: %d bytes", len(data))
	}
	return data, nil
}

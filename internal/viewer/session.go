// Package viewer implements the reading surface state machine: page navigation,
// zoom, rotation, width fitting, fullscreen, pinch gestures and the fallback from
// the in-page renderer to the hosted iframe viewer.
package viewer

import (
	"errors"
	"log/slog"
	"math"

	"github.com/schoolbooks-connect/schoolbooks/internal/locale"
)

// Mode selects how the document is displayed
type Mode string

const (
	ModeCustom Mode = "custom"
	ModeHosted Mode = "hosted"
)

// Status is the load state of the current mode
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

const (
	MinScale = 1.0
	MaxScale = 4.0
	ZoomStep = 0.25

	// WidthNoise is the smallest container width change that triggers a refit
	WidthNoise = 10

	NarrowViewport = 640
	NarrowPadding  = 32
	WidePadding    = 64

	DefaultWidth = 1024
)

// ErrNoPages is recorded when a document loads with no pages
var ErrNoPages = errors.New("document has no pages")

// Fullscreen is the platform fullscreen API
type Fullscreen interface {
	Request() error
	Exit() error
}

// Session is the state of one open reader
type Session struct {
	Page       int
	TotalPages int // 0 until the document has loaded
	Scale      float64
	Rotation   int
	Mode       Mode
	Status     Status
	Err        string
	Fullscreen bool

	// ContainerWidth is the last measurement that caused a refit
	ContainerWidth int
	// RenderWidth is the fit-to-width page width at scale 1
	RenderWidth int

	pinch Pinch
}

// NewSession opens a reader in custom mode, fitted to the viewport width
func NewSession(viewportWidth int) *Session {
	if viewportWidth <= 0 {
		viewportWidth = DefaultWidth
	}
	return &Session{
		Page:        1,
		Scale:       MinScale,
		Mode:        ModeCustom,
		Status:      StatusLoading,
		RenderWidth: viewportWidth,
	}
}

// ChangePage moves by offset pages, staying within [1, TotalPages]. While the
// page count is unknown the only page is 1. It reports whether the page changed.
func (s *Session) ChangePage(offset int) bool {
	last := max(s.TotalPages, 1)
	next := min(max(s.Page+offset, 1), last)
	changed := next != s.Page
	s.Page = next
	return changed
}

func (s *Session) ZoomIn() {
	s.SetScale(s.Scale + ZoomStep)
}

func (s *Session) ZoomOut() {
	s.SetScale(s.Scale - ZoomStep)
}

// SetScale commits a zoom level, clamped to [MinScale, MaxScale]
func (s *Session) SetScale(scale float64) {
	s.Scale = ClampScale(scale)
}

// ClampScale bounds a scale to [MinScale, MaxScale]. NaN maps to MinScale.
func ClampScale(scale float64) float64 {
	if math.IsNaN(scale) {
		return MinScale
	}
	return math.Min(math.Max(scale, MinScale), MaxScale)
}

// Rotate turns the page a quarter turn clockwise
func (s *Session) Rotate() {
	s.Rotation = (s.Rotation + 90) % 360
}

// Resize refits the page to a new container width. Changes of WidthNoise
// pixels or less are ignored so that mobile toolbars showing and hiding do not
// cause a re-render. It reports whether the render width changed.
func (s *Session) Resize(containerWidth, viewportWidth int) bool {
	if abs(containerWidth-s.ContainerWidth) <= WidthNoise {
		return false
	}
	padding := WidePadding
	if viewportWidth < NarrowViewport {
		padding = NarrowPadding
	}
	s.RenderWidth = max(containerWidth-padding, 1)
	s.ContainerWidth = containerWidth
	return true
}

// PageWidth is the width the page is rendered at, including zoom
func (s *Session) PageWidth() int {
	return int(math.Round(float64(s.RenderWidth) * s.Scale))
}

// LoadSucceeded records the page count of a loaded document
func (s *Session) LoadSucceeded(pages int) {
	if pages < 1 {
		s.LoadFailed(ErrNoPages)
		return
	}
	s.TotalPages = pages
	s.Status = StatusReady
	s.Err = ""
	s.Page = min(max(s.Page, 1), pages)
}

// LoadFailed moves the custom renderer to the failed state
func (s *Session) LoadFailed(err error) {
	slog.Debug("Reader load failed", "mode", s.Mode, "err", err)
	s.Status = StatusFailed
	s.Err = locale.ReaderErrBody
}

// UseHosted switches to the hosted iframe viewer and restarts loading
func (s *Session) UseHosted() {
	s.Mode = ModeHosted
	s.Status = StatusLoading
	s.Err = ""
	s.pinch = Pinch{}
}

// HostedReady marks the hosted viewer as loaded. The iframe exposes no failure
// signal, so hosted mode always ends up ready.
func (s *Session) HostedReady() {
	if s.Mode == ModeHosted {
		s.Status = StatusReady
	}
}

// UseCustom switches back to the in-page renderer and restarts loading
func (s *Session) UseCustom() {
	s.Mode = ModeCustom
	s.Status = StatusLoading
	s.Err = ""
	s.TotalPages = 0
}

// ToggleFullscreen requests fullscreen, or exits it when already active. A
// refused request leaves the state unchanged and is not reported.
func (s *Session) ToggleFullscreen(fs Fullscreen) {
	if !s.Fullscreen {
		if err := fs.Request(); err != nil {
			slog.Debug("Fullscreen request refused", "err", err)
			return
		}
		s.Fullscreen = true
		return
	}
	if err := fs.Exit(); err != nil {
		slog.Debug("Fullscreen exit failed", "err", err)
	}
	s.Fullscreen = false
}

// SyncFullscreen tracks fullscreen changes made outside the reader, such as
// the user pressing Escape
func (s *Session) SyncFullscreen(on bool) {
	s.Fullscreen = on
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

package viewer

import (
	"errors"
	"testing"

	"github.com/schoolbooks-connect/schoolbooks/internal/locale"
	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	s := NewSession(390)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 0, s.TotalPages)
	assert.Equal(t, MinScale, s.Scale)
	assert.Equal(t, ModeCustom, s.Mode)
	assert.Equal(t, StatusLoading, s.Status)
	assert.Equal(t, 390, s.RenderWidth)

	assert.Equal(t, DefaultWidth, NewSession(0).RenderWidth)
}

func TestChangePageStaysInBounds(t *testing.T) {
	s := NewSession(800)

	// unknown page count pins navigation to page 1
	assert.False(t, s.ChangePage(1))
	assert.Equal(t, 1, s.Page)

	s.LoadSucceeded(5)
	for _, offset := range []int{-100, -1, 0, 1, 2, 3, 4, 5, 100, -3, 7, -7} {
		s.ChangePage(offset)
		if s.Page < 1 || s.Page > 5 {
			t.Fatalf("Page %d out of bounds after offset %d", s.Page, offset)
		}
	}

	s.Page = 5
	assert.False(t, s.ChangePage(1), "no-op at last page")
	s.Page = 1
	assert.False(t, s.ChangePage(-1), "no-op at first page")
	assert.True(t, s.ChangePage(2))
	assert.Equal(t, 3, s.Page)
}

func TestZoomButtonsClamp(t *testing.T) {
	s := NewSession(800)

	s.ZoomOut()
	assert.Equal(t, 1.0, s.Scale)

	s.ZoomIn()
	assert.Equal(t, 1.25, s.Scale)

	for i := 0; i < 20; i++ {
		s.ZoomIn()
	}
	assert.Equal(t, 4.0, s.Scale)

	s.ZoomOut()
	assert.Equal(t, 3.75, s.Scale)
}

func TestRotationCycles(t *testing.T) {
	s := NewSession(800)
	seen := []int{}
	for i := 0; i < 4; i++ {
		s.Rotate()
		seen = append(seen, s.Rotation)
	}
	assert.Equal(t, []int{90, 180, 270, 0}, seen)
}

func TestResizeIgnoresNoise(t *testing.T) {
	s := NewSession(1280)

	assert.True(t, s.Resize(1000, 1280))
	assert.Equal(t, 1000-WidePadding, s.RenderWidth)

	assert.False(t, s.Resize(1010, 1280), "10px is noise")
	assert.Equal(t, 1000-WidePadding, s.RenderWidth)

	assert.True(t, s.Resize(400, 420))
	assert.Equal(t, 400-NarrowPadding, s.RenderWidth)
	assert.Equal(t, 400, s.ContainerWidth)

	assert.True(t, s.Resize(20, 20))
	assert.Equal(t, 1, s.RenderWidth)
}

func TestPageWidthIncludesZoom(t *testing.T) {
	s := NewSession(400)
	s.SetScale(1.5)
	assert.Equal(t, 600, s.PageWidth())
}

func TestLoadLifecycle(t *testing.T) {
	t.Run("custom success", func(t *testing.T) {
		s := NewSession(800)
		s.Page = 9
		s.LoadSucceeded(3)
		assert.Equal(t, StatusReady, s.Status)
		assert.Equal(t, 3, s.TotalPages)
		assert.Equal(t, 3, s.Page)
	})

	t.Run("custom failure then hosted", func(t *testing.T) {
		s := NewSession(800)
		s.LoadFailed(errors.New("bad xref"))
		assert.Equal(t, StatusFailed, s.Status)
		assert.Equal(t, locale.ReaderErrBody, s.Err)
		assert.Equal(t, ModeCustom, s.Mode, "no automatic mode switch")

		s.UseHosted()
		assert.Equal(t, ModeHosted, s.Mode)
		assert.Equal(t, StatusLoading, s.Status)
		assert.Empty(t, s.Err)

		s.HostedReady()
		assert.Equal(t, StatusReady, s.Status)
	})

	t.Run("zero pages is a failure", func(t *testing.T) {
		s := NewSession(800)
		s.LoadSucceeded(0)
		assert.Equal(t, StatusFailed, s.Status)
	})

	t.Run("hosted ready ignored in custom mode", func(t *testing.T) {
		s := NewSession(800)
		s.HostedReady()
		assert.Equal(t, StatusLoading, s.Status)
	})

	t.Run("back to custom restarts loading", func(t *testing.T) {
		s := NewSession(800)
		s.LoadSucceeded(4)
		s.UseHosted()
		s.HostedReady()
		s.UseCustom()
		assert.Equal(t, ModeCustom, s.Mode)
		assert.Equal(t, StatusLoading, s.Status)
		assert.Equal(t, 0, s.TotalPages)
	})
}

type fakeFullscreen struct {
	requestErr error
	requests   int
	exits      int
}

func (f *fakeFullscreen) Request() error {
	f.requests++
	return f.requestErr
}

func (f *fakeFullscreen) Exit() error {
	f.exits++
	return nil
}

func TestToggleFullscreen(t *testing.T) {
	s := NewSession(800)
	fs := &fakeFullscreen{}

	s.ToggleFullscreen(fs)
	assert.True(t, s.Fullscreen)
	assert.Equal(t, 1, fs.requests)

	s.ToggleFullscreen(fs)
	assert.False(t, s.Fullscreen)
	assert.Equal(t, 1, fs.exits)

	denied := &fakeFullscreen{requestErr: errors.New("not allowed")}
	s.ToggleFullscreen(denied)
	assert.False(t, s.Fullscreen, "refused request is swallowed")

	s.SyncFullscreen(true)
	assert.True(t, s.Fullscreen)
}

package viewer

import (
	"errors"
	"fmt"
)

// EventKind names an input to the reader
type EventKind string

const (
	EventNext             EventKind = "next"
	EventPrev             EventKind = "prev"
	EventPage             EventKind = "page"
	EventZoomIn           EventKind = "zoom-in"
	EventZoomOut          EventKind = "zoom-out"
	EventRotate           EventKind = "rotate"
	EventFullscreen       EventKind = "fullscreen"
	EventFullscreenChange EventKind = "fullscreen-change"
	EventHosted           EventKind = "hosted"
	EventCustom           EventKind = "custom"
	EventHostedReady      EventKind = "hosted-ready"
	EventResize           EventKind = "resize"
	EventPinch            EventKind = "pinch"
	EventLoaded           EventKind = "loaded"
	EventFailed           EventKind = "failed"
)

// ErrUnknownEvent is returned by Apply for an unrecognized event kind
var ErrUnknownEvent = errors.New("unknown reader event")

// ErrFullscreenDenied is returned by a refused fullscreen request
var ErrFullscreenDenied = errors.New("fullscreen request denied")

// Event is one reader input as reported by the browser
type Event struct {
	Kind EventKind `json:"kind" enum:"next,prev,page,zoom-in,zoom-out,rotate,fullscreen,fullscreen-change,hosted,custom,hosted-ready,resize,pinch,loaded,failed"`

	// Offset is the page delta for page events
	Offset int `json:"offset,omitempty"`

	ContainerWidth int `json:"containerWidth,omitempty"`
	ViewportWidth  int `json:"viewportWidth,omitempty"`

	// StartDistance and EndDistance describe a complete pinch gesture
	StartDistance float64 `json:"startDistance,omitempty"`
	EndDistance   float64 `json:"endDistance,omitempty"`

	// Granted is whether the browser honored a fullscreen request, or the
	// new fullscreen state for fullscreen-change
	Granted bool `json:"granted,omitempty"`

	Pages int    `json:"pages,omitempty"`
	Error string `json:"error,omitempty"`
}

// BrowserFullscreen replays the outcome of a fullscreen request the browser
// already made
type BrowserFullscreen struct {
	Granted bool
}

func (b BrowserFullscreen) Request() error {
	if !b.Granted {
		return ErrFullscreenDenied
	}
	return nil
}

func (b BrowserFullscreen) Exit() error { return nil }

// Apply feeds one event to the session. A pinch event replays a whole
// gesture: start, one move to the end distance, and end.
func (s *Session) Apply(ev Event) error {
	switch ev.Kind {
	case EventNext:
		s.ChangePage(1)
	case EventPrev:
		s.ChangePage(-1)
	case EventPage:
		s.ChangePage(ev.Offset)
	case EventZoomIn:
		s.ZoomIn()
	case EventZoomOut:
		s.ZoomOut()
	case EventRotate:
		s.Rotate()
	case EventFullscreen:
		s.ToggleFullscreen(BrowserFullscreen{Granted: ev.Granted})
	case EventFullscreenChange:
		s.SyncFullscreen(ev.Granted)
	case EventHosted:
		s.UseHosted()
	case EventCustom:
		s.UseCustom()
	case EventHostedReady:
		s.HostedReady()
	case EventResize:
		s.Resize(ev.ContainerWidth, ev.ViewportWidth)
	case EventPinch:
		s.PinchStart([]Point{{}, {X: ev.StartDistance}})
		s.PinchMove([]Point{{}, {X: ev.EndDistance}})
		s.PinchEnd()
	case EventLoaded:
		s.LoadSucceeded(ev.Pages)
	case EventFailed:
		s.LoadFailed(errors.New(ev.Error))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	return nil
}

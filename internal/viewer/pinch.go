package viewer

import (
	"math"
	"strconv"
)

const (
	TransformOrigin  = "center top"
	SettleTransition = "transform 0.2s ease-out"
)

// Point is a touch contact in client coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the distance between two contacts
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Pinch tracks a two-finger zoom gesture.
//
// While the gesture runs only the visual multiplier changes; the committed
// scale is left alone until the gesture ends, so the page is re-rendered once
// per gesture instead of on every move.
type Pinch struct {
	active        bool
	startDistance float64
	startScale    float64
	visual        float64
}

// Active reports whether a gesture is in progress
func (p Pinch) Active() bool {
	return p.active
}

// Visual is the uncommitted multiplier, 1 when no gesture is running
func (p Pinch) Visual() float64 {
	if !p.active {
		return 1
	}
	return p.visual
}

// PinchStart begins a gesture when exactly two contacts are down. Any other
// touch count clears gesture tracking.
func (s *Session) PinchStart(touches []Point) {
	if len(touches) != 2 {
		s.pinch = Pinch{}
		return
	}
	s.pinch = Pinch{
		active:        true,
		startDistance: Distance(touches[0], touches[1]),
		startScale:    s.Scale,
		visual:        1,
	}
}

// PinchMove updates the visual multiplier. Moves without an active gesture,
// with other than two contacts, or from a zero start distance are ignored.
func (s *Session) PinchMove(touches []Point) bool {
	if !s.pinch.active || len(touches) != 2 || s.pinch.startDistance == 0 {
		return false
	}
	s.pinch.visual = Distance(touches[0], touches[1]) / s.pinch.startDistance
	return true
}

// PinchEnd commits the gesture: the new scale is the start scale times the
// visual multiplier, clamped. The visual slot is reset. It reports whether a
// gesture was committed.
func (s *Session) PinchEnd() bool {
	if !s.pinch.active {
		return false
	}
	s.SetScale(s.pinch.startScale * s.pinch.Visual())
	s.pinch = Pinch{}
	return true
}

// Pinch returns the gesture tracking state
func (s *Session) Pinch() Pinch {
	return s.pinch
}

// VisualTransform is the CSS transform applied to the page during a gesture
func (s *Session) VisualTransform() string {
	if !s.pinch.active {
		return "none"
	}
	return "scale(" + strconv.FormatFloat(s.pinch.Visual(), 'f', -1, 64) + ")"
}

// Transition is the CSS transition for the page: none while the fingers are
// down so the page tracks them, and a short ease once the gesture settles
func (s *Session) Transition() string {
	if s.pinch.active {
		return "none"
	}
	return SettleTransition
}

package viewer

import (
	"math"
	"net/url"
	"strconv"

	"github.com/schoolbooks-connect/schoolbooks/internal/locale"
)

// PinchState is the serialized form of an in-progress gesture
type PinchState struct {
	StartDistance float64 `json:"startDistance"`
	StartScale    float64 `json:"startScale"`
	Visual        float64 `json:"visual"`
}

// State is the serialized form of a Session
type State struct {
	Page           int         `json:"page" minimum:"1"`
	TotalPages     int         `json:"totalPages" minimum:"0"`
	Scale          float64     `json:"scale" minimum:"1" maximum:"4"`
	Rotation       int         `json:"rotation" enum:"0,90,180,270"`
	Mode           Mode        `json:"mode" enum:"custom,hosted"`
	Status         Status      `json:"status" enum:"loading,ready,failed"`
	Error          string      `json:"error,omitempty"`
	Fullscreen     bool        `json:"fullscreen"`
	ContainerWidth int         `json:"containerWidth"`
	RenderWidth    int         `json:"renderWidth"`
	Pinch          *PinchState `json:"pinch,omitempty"`
}

// State returns the serializable state of s
func (s *Session) State() State {
	st := State{
		Page:           s.Page,
		TotalPages:     s.TotalPages,
		Scale:          s.Scale,
		Rotation:       s.Rotation,
		Mode:           s.Mode,
		Status:         s.Status,
		Error:          s.Err,
		Fullscreen:     s.Fullscreen,
		ContainerWidth: s.ContainerWidth,
		RenderWidth:    s.RenderWidth,
	}
	if s.pinch.active {
		st.Pinch = &PinchState{
			StartDistance: s.pinch.startDistance,
			StartScale:    s.pinch.startScale,
			Visual:        s.pinch.Visual(),
		}
	}
	return st
}

// Restore rebuilds a session from serialized state, forcing every field back
// into its valid range
func Restore(st State) *Session {
	s := NewSession(st.RenderWidth)
	s.TotalPages = max(st.TotalPages, 0)
	s.Page = max(st.Page, 1)
	if s.TotalPages > 0 {
		s.Page = min(s.Page, s.TotalPages)
	}
	s.Scale = ClampScale(st.Scale)
	s.Rotation = normalizeRotation(st.Rotation)
	s.Fullscreen = st.Fullscreen
	s.ContainerWidth = max(st.ContainerWidth, 0)

	if st.Mode == ModeHosted {
		s.Mode = ModeHosted
	}
	switch st.Status {
	case StatusReady, StatusFailed:
		s.Status = st.Status
	}
	if s.Status == StatusFailed {
		s.Err = st.Error
	}

	if p := st.Pinch; p != nil && p.StartDistance >= 0 && !math.IsNaN(p.StartDistance) {
		s.pinch = Pinch{
			active:        true,
			startDistance: p.StartDistance,
			startScale:    ClampScale(p.StartScale),
			visual:        p.Visual,
		}
	}
	return s
}

func normalizeRotation(r int) int {
	r = ((r % 360) + 360) % 360
	return r - r%90
}

// Query keys used in reader URLs
const (
	QueryPage       = "page"
	QueryScale      = "scale"
	QueryRotation   = "rotate"
	QueryMode       = "mode"
	QueryFullscreen = "fs"
	QueryWidth      = "w"
	QueryContainer  = "cw"
	QueryStatus     = "status"
)

// Values encodes a state as URL query values. The page count is not included;
// it is recomputed when the reader is rendered. Status is included once it has
// left loading, so a failure reported by the browser survives a redirect.
func (st State) Values() url.Values {
	v := url.Values{}
	v.Set(QueryPage, strconv.Itoa(st.Page))
	v.Set(QueryScale, strconv.FormatFloat(st.Scale, 'f', -1, 64))
	v.Set(QueryRotation, strconv.Itoa(st.Rotation))
	v.Set(QueryMode, string(st.Mode))
	if st.Fullscreen {
		v.Set(QueryFullscreen, "1")
	}
	if st.RenderWidth > 0 {
		v.Set(QueryWidth, strconv.Itoa(st.RenderWidth))
	}
	if st.ContainerWidth > 0 {
		v.Set(QueryContainer, strconv.Itoa(st.ContainerWidth))
	}
	if st.Status == StatusReady || st.Status == StatusFailed {
		v.Set(QueryStatus, string(st.Status))
	}
	return v
}

// StateFromValues decodes a state from URL query values. Missing or malformed
// values take their defaults.
func StateFromValues(v url.Values) State {
	st := State{
		Page:   1,
		Scale:  MinScale,
		Mode:   ModeCustom,
		Status: StatusLoading,
	}
	if n, err := strconv.Atoi(v.Get(QueryPage)); err == nil {
		st.Page = n
	}
	if f, err := strconv.ParseFloat(v.Get(QueryScale), 64); err == nil {
		st.Scale = f
	}
	if n, err := strconv.Atoi(v.Get(QueryRotation)); err == nil {
		st.Rotation = n
	}
	if Mode(v.Get(QueryMode)) == ModeHosted {
		st.Mode = ModeHosted
	}
	st.Fullscreen = v.Get(QueryFullscreen) == "1"
	if n, err := strconv.Atoi(v.Get(QueryWidth)); err == nil {
		st.RenderWidth = n
	}
	if n, err := strconv.Atoi(v.Get(QueryContainer)); err == nil {
		st.ContainerWidth = n
	}
	switch Status(v.Get(QueryStatus)) {
	case StatusReady:
		st.Status = StatusReady
	case StatusFailed:
		st.Status = StatusFailed
		st.Error = locale.ReaderErrBody
	}
	return st
}

package viewer

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreNormalizes(t *testing.T) {
	s := Restore(State{
		Page:       12,
		TotalPages: 4,
		Scale:      9,
		Rotation:   -90,
		Mode:       "weird",
		Status:     "exploded",
	})

	assert.Equal(t, 4, s.Page)
	assert.Equal(t, MaxScale, s.Scale)
	assert.Equal(t, 270, s.Rotation)
	assert.Equal(t, ModeCustom, s.Mode)
	assert.Equal(t, StatusLoading, s.Status)

	s = Restore(State{Page: -3, Scale: 0.1, Rotation: 450, Mode: ModeHosted, Status: StatusReady})
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, MinScale, s.Scale)
	assert.Equal(t, 90, s.Rotation)
	assert.Equal(t, ModeHosted, s.Mode)
	assert.Equal(t, StatusReady, s.Status)
}

func TestStateRoundTripKeepsPinch(t *testing.T) {
	s := NewSession(500)
	s.SetScale(2)
	s.PinchStart(pair(100))
	s.PinchMove(pair(125))

	restored := Restore(s.State())
	require.True(t, restored.Pinch().Active())
	assert.Equal(t, 1.25, restored.Pinch().Visual())

	restored.PinchEnd()
	assert.Equal(t, 2.5, restored.Scale)
}

func TestQueryValues(t *testing.T) {
	s := NewSession(700)
	s.Resize(760, 800)
	s.ZoomIn()
	s.Rotate()
	s.UseHosted()
	s.ToggleFullscreen(BrowserFullscreen{Granted: true})

	v := s.State().Values()
	assert.Equal(t, "1.25", v.Get(QueryScale))
	assert.Equal(t, "90", v.Get(QueryRotation))
	assert.Equal(t, "hosted", v.Get(QueryMode))
	assert.Equal(t, "1", v.Get(QueryFullscreen))
	assert.Equal(t, "696", v.Get(QueryWidth))
	assert.Equal(t, "760", v.Get(QueryContainer))

	st := StateFromValues(v)
	assert.Equal(t, 1.25, st.Scale)
	assert.Equal(t, 90, st.Rotation)
	assert.Equal(t, ModeHosted, st.Mode)
	assert.True(t, st.Fullscreen)
	assert.Equal(t, 696, st.RenderWidth)
	assert.Equal(t, 760, st.ContainerWidth)
}

func TestStateFromValuesDefaults(t *testing.T) {
	st := StateFromValues(url.Values{"page": {"abc"}, "scale": {""}})
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, MinScale, st.Scale)
	assert.Equal(t, ModeCustom, st.Mode)
	assert.False(t, st.Fullscreen)
}

func TestQueryValuesCarryStatus(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*Session)
		status string
	}{
		{name: "loading omitted", setup: func(*Session) {}, status: ""},
		{name: "custom failed", setup: func(s *Session) { s.LoadFailed(errors.New("render boom")) }, status: "failed"},
		{name: "hosted ready", setup: func(s *Session) { s.UseHosted(); s.HostedReady() }, status: "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(800)
			tt.setup(s)

			v := s.State().Values()
			assert.Equal(t, tt.status, v.Get(QueryStatus))

			restored := Restore(StateFromValues(v))
			assert.Equal(t, s.Status, restored.Status)
			assert.Equal(t, s.Err, restored.Err)
		})
	}
}

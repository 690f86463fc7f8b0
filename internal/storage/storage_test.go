package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := New(time.Hour)

	session := s.Create()
	require.NotEmpty(t, session.Token)
	assert.Equal(t, 1, s.Count())

	got, ok := s.Get(session.Token)
	require.True(t, ok)
	assert.Same(t, session, got)

	s.Delete(session.Token)
	_, ok = s.Get(session.Token)
	assert.False(t, ok)
	assert.Zero(t, s.Count())
}

func TestGetUnknownToken(t *testing.T) {
	s := New(time.Hour)
	_, ok := s.Get("")
	assert.False(t, ok)
	_, ok = s.Get("nope")
	assert.False(t, ok)
}

func TestSessionsExpire(t *testing.T) {
	s := New(20 * time.Millisecond)
	session := s.Create()

	time.Sleep(50 * time.Millisecond)
	_, ok := s.Get(session.Token)
	assert.False(t, ok)
}

func TestFlashesAreShownOnce(t *testing.T) {
	s := New(time.Hour)
	session := s.Create()

	s.AddFlash(session.Token, FlashSuccess, "saved")
	s.AddFlash(session.Token, FlashError, "failed")
	s.AddFlash("unknown", FlashInfo, "dropped")

	flashes := s.PopFlashes(session.Token)
	assert.Equal(t, []Flash{
		{Kind: FlashSuccess, Message: "saved"},
		{Kind: FlashError, Message: "failed"},
	}, flashes)
	assert.Empty(t, s.PopFlashes(session.Token))
	assert.Nil(t, s.PopFlashes("unknown"))
}

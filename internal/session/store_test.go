package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"variant-studio/internal/catalog"
)

func TestStore_Defaults(t *testing.T) {
	s := NewStore(Options{})
	st := s.Get(1, 2)

	assert.Equal(t, "realistic", st.Style)
	assert.Equal(t, "warm", st.Tone)
	assert.Equal(t, catalog.DefaultNumImages, st.NumImages)
	assert.Equal(t, catalog.DefaultImageSize, st.ImageSize)
	assert.Equal(t, MenuMain, st.Menu)
}

func TestStore_UpdateIsPerChatAndUser(t *testing.T) {
	s := NewStore(Options{})
	s.Update(1, 2, func(st *Settings) { st.Style = "anime" })

	assert.Equal(t, "anime", s.Get(1, 2).Style)
	assert.Equal(t, "realistic", s.Get(1, 3).Style)
	assert.Equal(t, "realistic", s.Get(9, 2).Style)
}

func TestStore_RememberBoundsHistory(t *testing.T) {
	s := NewStore(Options{MaxHistory: 2})
	s.Remember(1, 1, "one", "b1")
	s.Remember(1, 1, "two", "b2")
	s.Remember(1, 1, "three", "b3")

	st := s.Get(1, 1)
	assert.Equal(t, []string{"two", "three"}, st.History)
	assert.Equal(t, "three", st.LastPrompt)
	assert.Equal(t, "b3", st.LastBatch)

	// Returned copies do not alias the stored history.
	st.History[0] = "changed"
	assert.Equal(t, "two", s.Get(1, 1).History[0])
}

func TestStore_ResetKeepsHistory(t *testing.T) {
	s := NewStore(Options{})
	s.Update(1, 1, func(st *Settings) {
		st.Tone = "dark"
		st.NumImages = 8
		st.MessageID = 42
	})
	s.Remember(1, 1, "a red fox", "")

	st := s.Reset(1, 1)
	assert.Equal(t, "warm", st.Tone)
	assert.Equal(t, catalog.DefaultNumImages, st.NumImages)
	assert.Equal(t, "a red fox", st.LastPrompt)
	assert.Equal(t, 42, st.MessageID)
}

func TestSettings_Options(t *testing.T) {
	st := Settings{Style: "watercolor", Tone: "warm", NumImages: 2, ImageSize: 256}
	assert.Equal(t, catalog.Options{
		Prompt:          "a red fox in snow",
		BackgroundStyle: "watercolor",
		Tone:            "warm",
		NumImages:       2,
		ImageSize:       256,
	}, st.Options("a red fox in snow"))
}

package session

import (
	"sync"
	"time"

	"variant-studio/internal/catalog"
)

// Menu names for the settings keyboard.
const (
	MenuMain  = "main"
	MenuStyle = "style"
	MenuTone  = "tone"
	MenuCount = "count"
	MenuSize  = "size"
)

// Settings are one user's generation defaults in one chat.
type Settings struct {
	Style     string
	Tone      string
	NumImages int
	ImageSize int

	LastPrompt string
	LastBatch  string
	History    []string

	MessageID int
	Menu      string

	UpdatedAt time.Time
}

// Options returns the catalog options for prompt with these settings applied.
func (s Settings) Options(prompt string) catalog.Options {
	return catalog.Options{
		Prompt:          prompt,
		BackgroundStyle: s.Style,
		Tone:            s.Tone,
		NumImages:       s.NumImages,
		ImageSize:       s.ImageSize,
	}
}

type Options struct {
	// MaxHistory bounds the remembered prompts per user.
	MaxHistory int
}

type stateKey struct {
	chatID int64
	userID int64
}

type Store struct {
	mu         sync.Mutex
	m          map[stateKey]*Settings
	maxHistory int
}

func NewStore(opts Options) *Store {
	maxHistory := opts.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 20
	}

	return &Store{
		m:          make(map[stateKey]*Settings),
		maxHistory: maxHistory,
	}
}

func (s *Store) Get(chatID, userID int64) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneSettings(*s.getOrCreateLocked(chatID, userID))
}

// Update applies fn under the store lock and returns a copy of the result.
func (s *Store) Update(chatID, userID int64, fn func(*Settings)) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, userID)
	fn(st)
	st.UpdatedAt = time.Now()
	return cloneSettings(*st)
}

// Remember records a prompt and the batch it produced.
func (s *Store) Remember(chatID, userID int64, prompt, batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, userID)
	st.LastPrompt = prompt
	st.LastBatch = batchID
	st.History = append(st.History, prompt)
	if len(st.History) > s.maxHistory {
		st.History = st.History[len(st.History)-s.maxHistory:]
	}
	st.UpdatedAt = time.Now()
}

// Reset restores defaults but keeps the prompt history.
func (s *Store) Reset(chatID, userID int64) Settings {
	return s.Update(chatID, userID, func(st *Settings) {
		def := defaultSettings()
		def.LastPrompt = st.LastPrompt
		def.LastBatch = st.LastBatch
		def.History = st.History
		def.MessageID = st.MessageID
		*st = def
	})
}

func (s *Store) getOrCreateLocked(chatID, userID int64) *Settings {
	key := stateKey{chatID: chatID, userID: userID}
	if st, ok := s.m[key]; ok {
		return st
	}

	st := defaultSettings()
	s.m[key] = &st
	return &st
}

func defaultSettings() Settings {
	return Settings{
		Style:     "realistic",
		Tone:      "warm",
		NumImages: catalog.DefaultNumImages,
		ImageSize: catalog.DefaultImageSize,
		Menu:      MenuMain,
		UpdatedAt: time.Now(),
	}
}

func cloneSettings(st Settings) Settings {
	st.History = append([]string(nil), st.History...)
	return st
}

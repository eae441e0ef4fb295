// Package reader holds the per-view chapter navigation state machine.
// A session tracks which chapter of a book is open, fetches content on
// demand, and keeps the two presentation preferences (theme, font
// size). Sessions live in memory only and die with the reader view.
package reader

import (
	"context"
	"errors"
	"sync"

	"chapterly/pkg/domain"
)

// State is the session lifecycle phase.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Theme is the two-value presentation theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// FontScale is the fixed ascending font-size scale. Adjustments clamp
// to it and saturate at both ends.
var FontScale = []int{12, 14, 16, 18, 20, 22, 24}

const defaultFontSize = 16

// Library provides the chapter data a session navigates over.
type Library interface {
	ListChapterSummaries(ctx context.Context, bookID string) ([]domain.ChapterSummary, error)
	GetChapter(ctx context.Context, chapterID string) (domain.ChapterWithBook, bool, error)
}

// Session is one open reader view. All methods are safe for concurrent
// use; navigation calls serialize on the session mutex, so a request
// issued while another fetch is in flight queues behind it rather than
// racing it.
type Session struct {
	mu sync.Mutex

	lib       Library
	state     State
	bookID    string
	summaries []domain.ChapterSummary
	index     int
	current   domain.ChapterWithBook
	theme     Theme
	fontSize  int
	lastErr   error
}

// View is an immutable snapshot of session state.
type View struct {
	State    State                    `json:"state"`
	BookID   string                   `json:"bookId,omitempty"`
	Index    int                      `json:"index"`
	Count    int                      `json:"count"`
	Chapters []domain.ChapterSummary  `json:"chapters,omitempty"`
	Current  *domain.ChapterWithBook  `json:"current,omitempty"`
	Theme    Theme                    `json:"theme"`
	FontSize int                      `json:"fontSize"`
	Error    string                   `json:"error,omitempty"`
}

// NewSession returns an empty session with default preferences.
func NewSession(lib Library) *Session {
	return &Session{
		lib:      lib,
		state:    StateEmpty,
		theme:    ThemeLight,
		fontSize: defaultFontSize,
	}
}

// Open loads the chapter list for a book and the content of its first
// chapter. Valid only from the empty state.
func (s *Session) Open(ctx context.Context, bookID string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEmpty {
		return s.viewLocked()
	}
	s.state = StateLoading
	s.bookID = bookID

	summaries, err := s.lib.ListChapterSummaries(ctx, bookID)
	if err != nil {
		return s.failLocked(err)
	}
	if len(summaries) == 0 {
		return s.failLocked(errors.New("book has no chapters"))
	}
	chapter, ok, err := s.lib.GetChapter(ctx, summaries[0].ID)
	if err != nil {
		return s.failLocked(err)
	}
	if !ok {
		return s.failLocked(errors.New("chapter not found"))
	}

	s.summaries = summaries
	s.index = 0
	s.current = chapter
	s.state = StateReady
	s.lastErr = nil
	return s.viewLocked()
}

// Next moves to the following chapter. A no-op unless the session is
// ready and not on the last chapter. On a fetch failure the session
// enters the error state with the index unchanged.
func (s *Session) Next(ctx context.Context) View {
	return s.step(ctx, +1)
}

// Previous moves to the preceding chapter, symmetric to Next.
func (s *Session) Previous(ctx context.Context) View {
	return s.step(ctx, -1)
}

func (s *Session) step(ctx context.Context, delta int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return s.viewLocked()
	}
	target := s.index + delta
	if target < 0 || target >= len(s.summaries) {
		return s.viewLocked()
	}

	s.state = StateLoading
	chapter, ok, err := s.lib.GetChapter(ctx, s.summaries[target].ID)
	if err != nil {
		return s.failLocked(err)
	}
	if !ok {
		return s.failLocked(errors.New("chapter not found"))
	}
	s.index = target
	s.current = chapter
	s.state = StateReady
	s.lastErr = nil
	return s.viewLocked()
}

// SetTheme updates the theme. Unknown values are ignored. Never
// triggers a fetch and is valid in any state.
func (s *Session) SetTheme(theme Theme) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if theme == ThemeLight || theme == ThemeDark {
		s.theme = theme
	}
	return s.viewLocked()
}

// IncreaseFontSize steps up the font scale, saturating at the top.
func (s *Session) IncreaseFontSize() View {
	return s.adjustFont(+1)
}

// DecreaseFontSize steps down the font scale, saturating at the bottom.
func (s *Session) DecreaseFontSize() View {
	return s.adjustFont(-1)
}

func (s *Session) adjustFont(delta int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := fontIndex(s.fontSize)
	next := idx + delta
	if next >= 0 && next < len(FontScale) {
		s.fontSize = FontScale[next]
	}
	return s.viewLocked()
}

// SetFontSize clamps the given value to the nearest scale entry.
func (s *Session) SetFontSize(size int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	nearest := FontScale[0]
	for _, v := range FontScale {
		if abs(v-size) < abs(nearest-size) {
			nearest = v
		}
	}
	s.fontSize = nearest
	return s.viewLocked()
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) failLocked(err error) View {
	s.state = StateError
	s.lastErr = err
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		State:    s.state,
		BookID:   s.bookID,
		Index:    s.index,
		Count:    len(s.summaries),
		Chapters: s.summaries,
		Theme:    s.theme,
		FontSize: s.fontSize,
	}
	if s.state == StateReady {
		current := s.current
		v.Current = &current
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	return v
}

func fontIndex(size int) int {
	for i, v := range FontScale {
		if v == size {
			return i
		}
	}
	return 2 // default slot
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

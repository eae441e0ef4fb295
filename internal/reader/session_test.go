package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"chapterly/pkg/domain"
)

// fakeLibrary serves a fixed chapter list and can be told to fail.
type fakeLibrary struct {
	mu        sync.Mutex
	summaries []domain.ChapterSummary
	chapters  map[string]domain.ChapterWithBook
	failList  bool
	failGet   map[string]bool
	getCalls  int
}

func newFakeLibrary(n int) *fakeLibrary {
	lib := &fakeLibrary{
		chapters: make(map[string]domain.ChapterWithBook),
		failGet:  make(map[string]bool),
	}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("ch%d", i)
		num := fmt.Sprintf("%d", i)
		lib.summaries = append(lib.summaries, domain.ChapterSummary{ID: id, Number: num, Title: "Chapter " + num})
		lib.chapters[id] = domain.ChapterWithBook{
			Chapter:    domain.Chapter{ID: id, BookID: "b1", Number: num, Title: "Chapter " + num, Content: "content " + num},
			BookTitle:  "Book",
			BookAuthor: "Author",
		}
	}
	return lib
}

func (f *fakeLibrary) ListChapterSummaries(_ context.Context, bookID string) ([]domain.ChapterSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errors.New("list failed")
	}
	return f.summaries, nil
}

func (f *fakeLibrary) GetChapter(_ context.Context, id string) (domain.ChapterWithBook, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failGet[id] {
		return domain.ChapterWithBook{}, false, errors.New("get failed")
	}
	c, ok := f.chapters[id]
	return c, ok, nil
}

func TestSessionOpen(t *testing.T) {
	s := NewSession(newFakeLibrary(3))
	if got := s.Snapshot().State; got != StateEmpty {
		t.Fatalf("initial state = %q, want empty", got)
	}

	v := s.Open(context.Background(), "b1")
	if v.State != StateReady {
		t.Fatalf("state = %q, want ready (err=%q)", v.State, v.Error)
	}
	if v.Index != 0 || v.Count != 3 {
		t.Fatalf("index/count = %d/%d, want 0/3", v.Index, v.Count)
	}
	if v.Current == nil || v.Current.ID != "ch1" {
		t.Fatalf("current = %+v, want ch1", v.Current)
	}
}

func TestSessionOpenListFailure(t *testing.T) {
	lib := newFakeLibrary(3)
	lib.failList = true
	s := NewSession(lib)
	v := s.Open(context.Background(), "b1")
	if v.State != StateError {
		t.Fatalf("state = %q, want error", v.State)
	}
	if v.Error == "" {
		t.Fatalf("error message missing")
	}
}

func TestSessionOpenEmptyBook(t *testing.T) {
	s := NewSession(newFakeLibrary(0))
	v := s.Open(context.Background(), "b1")
	if v.State != StateError {
		t.Fatalf("state = %q, want error for zero chapters", v.State)
	}
}

func TestSessionNavigationBounds(t *testing.T) {
	s := NewSession(newFakeLibrary(3))
	ctx := context.Background()
	s.Open(ctx, "b1")

	// Previous at index 0 is a no-op.
	v := s.Previous(ctx)
	if v.Index != 0 || v.State != StateReady {
		t.Fatalf("Previous at 0: index=%d state=%q", v.Index, v.State)
	}

	// Walk to the end.
	for want := 1; want <= 2; want++ {
		v = s.Next(ctx)
		if v.Index != want || v.State != StateReady {
			t.Fatalf("Next: index=%d state=%q, want %d/ready", v.Index, v.State, want)
		}
		if v.Current.ID != fmt.Sprintf("ch%d", want+1) {
			t.Fatalf("content does not match summaries[index]: %q", v.Current.ID)
		}
	}

	// Next at the last index is a no-op.
	v = s.Next(ctx)
	if v.Index != 2 || v.State != StateReady {
		t.Fatalf("Next at last: index=%d state=%q", v.Index, v.State)
	}

	// Arbitrary walk never leaves bounds.
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			v = s.Next(ctx)
		} else {
			v = s.Previous(ctx)
		}
		if v.Index < 0 || v.Index >= v.Count {
			t.Fatalf("index %d out of bounds [0,%d)", v.Index, v.Count)
		}
	}
}

func TestSessionNextFetchFailureKeepsIndex(t *testing.T) {
	lib := newFakeLibrary(3)
	lib.failGet["ch2"] = true
	s := NewSession(lib)
	ctx := context.Background()
	s.Open(ctx, "b1")

	v := s.Next(ctx)
	if v.State != StateError {
		t.Fatalf("state = %q, want error", v.State)
	}
	if v.Index != 0 {
		t.Fatalf("index moved on failed fetch: %d", v.Index)
	}

	// Error state: navigation is a no-op, preferences still work.
	if v := s.Next(ctx); v.State != StateError || v.Index != 0 {
		t.Fatalf("Next in error state: %+v", v)
	}
	if v := s.SetTheme(ThemeDark); v.Theme != ThemeDark {
		t.Fatalf("SetTheme in error state: %+v", v)
	}
}

func TestSessionOpenTwiceIsNoop(t *testing.T) {
	lib := newFakeLibrary(2)
	s := NewSession(lib)
	ctx := context.Background()
	s.Open(ctx, "b1")
	s.Next(ctx)

	v := s.Open(ctx, "b1")
	if v.Index != 1 || v.State != StateReady {
		t.Fatalf("re-open changed state: %+v", v)
	}
}

func TestSessionTheme(t *testing.T) {
	s := NewSession(newFakeLibrary(1))
	if v := s.SetTheme(ThemeDark); v.Theme != ThemeDark {
		t.Fatalf("theme = %q, want dark", v.Theme)
	}
	if v := s.SetTheme(Theme("sepia")); v.Theme != ThemeDark {
		t.Fatalf("invalid theme accepted: %q", v.Theme)
	}
	if v := s.SetTheme(ThemeLight); v.Theme != ThemeLight {
		t.Fatalf("theme = %q, want light", v.Theme)
	}
}

func TestSessionFontSizeSaturation(t *testing.T) {
	s := NewSession(newFakeLibrary(1))
	if got := s.Snapshot().FontSize; got != 16 {
		t.Fatalf("default font size = %d, want 16", got)
	}

	for i := 0; i < 10; i++ {
		s.IncreaseFontSize()
	}
	if got := s.Snapshot().FontSize; got != 24 {
		t.Fatalf("font size after repeated increase = %d, want 24", got)
	}

	for i := 0; i < 10; i++ {
		s.DecreaseFontSize()
	}
	if got := s.Snapshot().FontSize; got != 12 {
		t.Fatalf("font size after repeated decrease = %d, want 12", got)
	}

	inScale := func(size int) bool {
		for _, v := range FontScale {
			if v == size {
				return true
			}
		}
		return false
	}
	for _, req := range []int{0, 11, 13, 17, 25, 100} {
		v := s.SetFontSize(req)
		if !inScale(v.FontSize) {
			t.Fatalf("SetFontSize(%d) produced off-scale value %d", req, v.FontSize)
		}
	}
	if v := s.SetFontSize(100); v.FontSize != 24 {
		t.Fatalf("SetFontSize(100) = %d, want 24", v.FontSize)
	}
	if v := s.SetFontSize(0); v.FontSize != 12 {
		t.Fatalf("SetFontSize(0) = %d, want 12", v.FontSize)
	}
}

func TestSessionConcurrentNavigationSerializes(t *testing.T) {
	lib := newFakeLibrary(10)
	s := NewSession(lib)
	ctx := context.Background()
	s.Open(ctx, "b1")

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Next(ctx)
		}()
	}
	wg.Wait()

	v := s.Snapshot()
	if v.State != StateReady {
		t.Fatalf("state = %q, want ready", v.State)
	}
	if v.Index != 9 {
		t.Fatalf("index = %d, want 9 after nine serialized Next calls", v.Index)
	}
	if v.Current.ID != "ch10" {
		t.Fatalf("content out of sync with index: %q", v.Current.ID)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(newFakeLibrary(2))
	id, sess := m.Create()
	if sess == nil || id == "" {
		t.Fatalf("Create returned %q/%v", id, sess)
	}
	if got, ok := m.Get(id); !ok || got != sess {
		t.Fatalf("Get(%q) = %v, %v", id, got, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if !m.Close(id) {
		t.Fatalf("Close reported missing session")
	}
	if _, ok := m.Get(id); ok {
		t.Fatalf("session survived Close")
	}
	if m.Close(id) {
		t.Fatalf("double Close reported success")
	}
}

package store

import (
	"testing"
	"time"

	"chapterly/pkg/domain"
)

func sampleBook(id string) domain.Book {
	now := time.Now().UTC()
	return domain.Book{
		ID:        id,
		Title:     "Pride and Prejudice",
		Author:    "Jane Austen",
		Genres:    []string{"Classic Literature", "Romance"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStoreFindBookByTitleAuthor(t *testing.T) {
	m := NewMemoryStore()
	if err := m.SaveBook(sampleBook("b1")); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	got, ok, err := m.FindBookByTitleAuthor("Pride and Prejudice", "Jane Austen")
	if err != nil || !ok {
		t.Fatalf("FindBookByTitleAuthor: ok=%v err=%v", ok, err)
	}
	if got.ID != "b1" {
		t.Fatalf("got book %q, want b1", got.ID)
	}

	_, ok, err = m.FindBookByTitleAuthor("Pride and Prejudice", "Someone Else")
	if err != nil {
		t.Fatalf("FindBookByTitleAuthor: %v", err)
	}
	if ok {
		t.Fatalf("expected no match for wrong author")
	}
}

func TestMemoryStoreUpsertChapterUpdatesInPlace(t *testing.T) {
	m := NewMemoryStore()
	if err := m.SaveBook(sampleBook("b1")); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	first := domain.Chapter{ID: "c1", BookID: "b1", Number: "I", Title: "One", Content: "old", Position: 0}
	if err := m.UpsertChapter(first); err != nil {
		t.Fatalf("UpsertChapter: %v", err)
	}
	// Same (book, number) with a fresh ID must update, not duplicate.
	second := domain.Chapter{ID: "c2", BookID: "b1", Number: "I", Title: "One", Content: "new", Position: 0}
	if err := m.UpsertChapter(second); err != nil {
		t.Fatalf("UpsertChapter: %v", err)
	}

	summaries, err := m.ListChapterSummaries("b1")
	if err != nil {
		t.Fatalf("ListChapterSummaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d chapters, want 1", len(summaries))
	}
	if summaries[0].ID != "c1" {
		t.Fatalf("upsert replaced chapter ID: got %q, want c1", summaries[0].ID)
	}
	full, ok, err := m.GetChapter("c1")
	if err != nil || !ok {
		t.Fatalf("GetChapter: ok=%v err=%v", ok, err)
	}
	if full.Content != "new" {
		t.Fatalf("content = %q, want %q", full.Content, "new")
	}
	if full.BookTitle != "Pride and Prejudice" || full.BookAuthor != "Jane Austen" {
		t.Fatalf("parent book metadata missing: %+v", full)
	}
}

func TestMemoryStoreChapterOrder(t *testing.T) {
	m := NewMemoryStore()
	if err := m.SaveBook(sampleBook("b1")); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	// Insert out of order; positions decide ordering, not numbers.
	for _, c := range []domain.Chapter{
		{ID: "c10", BookID: "b1", Number: "10", Position: 9},
		{ID: "c2", BookID: "b1", Number: "2", Position: 1},
		{ID: "c1", BookID: "b1", Number: "1", Position: 0},
	} {
		if err := m.UpsertChapter(c); err != nil {
			t.Fatalf("UpsertChapter(%s): %v", c.ID, err)
		}
	}
	summaries, err := m.ListChapterSummaries("b1")
	if err != nil {
		t.Fatalf("ListChapterSummaries: %v", err)
	}
	want := []string{"1", "2", "10"}
	if len(summaries) != len(want) {
		t.Fatalf("got %d chapters, want %d", len(summaries), len(want))
	}
	for i, num := range want {
		if summaries[i].Number != num {
			t.Fatalf("summaries[%d].Number = %q, want %q", i, summaries[i].Number, num)
		}
	}
}

func TestMemoryStoreSessions(t *testing.T) {
	m := NewMemoryStore()
	token, err := m.NewSession("u1")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	uid, ok, err := m.GetUserIDByToken(token)
	if err != nil || !ok || uid != "u1" {
		t.Fatalf("GetUserIDByToken = (%q, %v, %v), want (u1, true, nil)", uid, ok, err)
	}
	if err := m.DeleteSession(token); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, ok, _ := m.GetUserIDByToken(token); ok {
		t.Fatalf("session survived deletion")
	}
}

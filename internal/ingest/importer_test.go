package ingest

import (
	"context"
	"strings"
	"testing"

	"chapterly/pkg/store"
)

const prideText = `Pride and Prejudice

by Jane Austen

CHAPTER I. A Truth Universally Acknowledged

It is a truth universally acknowledged.

CHAPTER II. The Visit

Mr. Bennet was among the earliest.
`

func TestImportTextCreatesBookAndChapters(t *testing.T) {
	st := store.NewMemoryStore()
	im := NewImporter(st, nil)

	book, n, err := im.ImportText(context.Background(), prideText)
	if err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	if n != 2 {
		t.Fatalf("chapters = %d, want 2", n)
	}
	if book.Title != "Pride and Prejudice" || book.Author != "by Jane Austen" {
		t.Fatalf("book = %q by %q", book.Title, book.Author)
	}

	sums, err := st.ListChapterSummaries(book.ID)
	if err != nil {
		t.Fatalf("ListChapterSummaries: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("summaries = %d, want 2", len(sums))
	}
	if sums[0].Number != "I" || sums[1].Number != "II" {
		t.Fatalf("order = %s, %s", sums[0].Number, sums[1].Number)
	}
	if sums[0].Title != "A Truth Universally Acknowledged" {
		t.Fatalf("title = %q", sums[0].Title)
	}
}

func TestImportTextIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	im := NewImporter(st, nil)

	first, _, err := im.ImportText(context.Background(), prideText)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	firstSums, _ := st.ListChapterSummaries(first.ID)

	second, _, err := im.ImportText(context.Background(), prideText)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("book duplicated: %s vs %s", first.ID, second.ID)
	}

	books, _ := st.ListBooks()
	if len(books) != 1 {
		t.Fatalf("books = %d, want 1", len(books))
	}
	secondSums, _ := st.ListChapterSummaries(first.ID)
	if len(secondSums) != len(firstSums) {
		t.Fatalf("chapters = %d, want %d", len(secondSums), len(firstSums))
	}
	for i := range firstSums {
		if secondSums[i].ID != firstSums[i].ID {
			t.Fatalf("chapter %d replaced instead of updated", i)
		}
	}
}

func TestImportTextWithoutChaptersPersistsNothing(t *testing.T) {
	st := store.NewMemoryStore()
	im := NewImporter(st, nil)

	_, _, err := im.ImportText(context.Background(), "Just prose.\n\nNo headings at all.")
	if err == nil {
		t.Fatal("expected error for chapterless document")
	}
	books, _ := st.ListBooks()
	if len(books) != 0 {
		t.Fatalf("books = %d, want 0", len(books))
	}
}

func TestImportMarkdownDocFrontMatter(t *testing.T) {
	st := store.NewMemoryStore()
	im := NewImporter(st, nil)

	doc := strings.Join([]string{
		"---",
		"title: The Time Machine",
		"author: H. G. Wells",
		"description: A scientist travels forward in time.",
		"cover: time-machine.jpg",
		"genres:",
		"  - Science Fiction",
		"---",
		"# Introduction",
		"The Time Traveller was expounding.",
		"# The Machine",
		"I looked at the machine.",
	}, "\n")

	book, coverRef, err := im.ImportMarkdownDoc(context.Background(), "the-time-machine", doc)
	if err != nil {
		t.Fatalf("ImportMarkdownDoc: %v", err)
	}
	if book.Title != "The Time Machine" || book.Author != "H. G. Wells" {
		t.Fatalf("book = %q by %q", book.Title, book.Author)
	}
	if book.Description != "A scientist travels forward in time." {
		t.Fatalf("description = %q", book.Description)
	}
	if len(book.Genres) != 1 || book.Genres[0] != "Science Fiction" {
		t.Fatalf("genres = %v", book.Genres)
	}
	if coverRef != "time-machine.jpg" {
		t.Fatalf("coverRef = %q", coverRef)
	}

	sums, _ := st.ListChapterSummaries(book.ID)
	if len(sums) != 2 {
		t.Fatalf("summaries = %d, want 2", len(sums))
	}
	if sums[0].Number != "1" || sums[1].Number != "2" {
		t.Fatalf("numbers = %s, %s", sums[0].Number, sums[1].Number)
	}
}

func TestImportMarkdownDocDefaultsFromFilename(t *testing.T) {
	st := store.NewMemoryStore()
	im := NewImporter(st, nil)

	book, _, err := im.ImportMarkdownDoc(context.Background(), "dracula", "# One\nText.")
	if err != nil {
		t.Fatalf("ImportMarkdownDoc: %v", err)
	}
	if book.Title != "dracula" {
		t.Fatalf("title = %q, want filename fallback", book.Title)
	}
	if book.Author != "Unknown Author" {
		t.Fatalf("author = %q", book.Author)
	}
}

func TestImportMarkdownDocUnclosedFrontMatter(t *testing.T) {
	st := store.NewMemoryStore()
	im := NewImporter(st, nil)

	_, _, err := im.ImportMarkdownDoc(context.Background(), "broken", "---\ntitle: Broken\n# One\nText.")
	if err == nil {
		t.Fatal("expected error for unclosed front matter")
	}
}

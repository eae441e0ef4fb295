package segment

import (
	"strings"
	"testing"
)

func TestExtractPlainTextMeta(t *testing.T) {
	doc := strings.Join([]string{
		"THE PROJECT GUTENBERG EBOOK",
		"",
		"Pride and Prejudice",
		"",
		"THIS EDITION IS IN THE PUBLIC DOMAIN",
		"Jane Austen",
		"",
		"CHAPTER I. Something",
	}, "\n")

	meta := ExtractPlainTextMeta(doc)
	if meta.Title != "Pride and Prejudice" {
		t.Errorf("Title = %q, want %q", meta.Title, "Pride and Prejudice")
	}
	if meta.Author != "Jane Austen" {
		t.Errorf("Author = %q, want %q", meta.Author, "Jane Austen")
	}
}

func TestExtractPlainTextMetaUnrecognizedTitle(t *testing.T) {
	meta := ExtractPlainTextMeta("Some Unlisted Book\nSome Author\n")
	if meta.Title != "Unknown Title" {
		t.Errorf("Title = %q, want Unknown Title", meta.Title)
	}
	if meta.Author != "Unknown Author" {
		t.Errorf("Author = %q, want Unknown Author", meta.Author)
	}
}

func TestSplitFrontMatter(t *testing.T) {
	doc := strings.Join([]string{
		"---",
		"title: Great Expectations",
		"author: Charles Dickens",
		"description: An orphan's rise.",
		"cover: great_expectations_cover.jpg",
		"genres:",
		"  - Classic Literature",
		"  - Coming-of-Age",
		"tags:",
		"  - Victorian Era",
		"---",
		"# Chapter One",
		"My father's family name...",
	}, "\n")

	meta, body, err := SplitFrontMatter(doc)
	if err != nil {
		t.Fatalf("SplitFrontMatter: %v", err)
	}
	if meta.Title != "Great Expectations" || meta.Author != "Charles Dickens" {
		t.Fatalf("meta = %+v", meta)
	}
	if meta.Cover != "great_expectations_cover.jpg" {
		t.Errorf("Cover = %q", meta.Cover)
	}
	if len(meta.Genres) != 2 || meta.Genres[0] != "Classic Literature" {
		t.Errorf("Genres = %v", meta.Genres)
	}
	if !strings.HasPrefix(body, "# Chapter One") {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontMatterAbsent(t *testing.T) {
	doc := "# Chapter One\ntext"
	meta, body, err := SplitFrontMatter(doc)
	if err != nil {
		t.Fatalf("SplitFrontMatter: %v", err)
	}
	if meta.Title != "" || meta.Author != "" || meta.Cover != "" {
		t.Fatalf("expected zero meta, got %+v", meta)
	}
	if body != doc {
		t.Fatalf("body changed: %q", body)
	}
}

func TestSplitFrontMatterUnclosed(t *testing.T) {
	if _, _, err := SplitFrontMatter("---\ntitle: Broken\nno closing fence"); err == nil {
		t.Fatalf("expected error for unclosed front matter")
	}
}

func TestApplyDefaults(t *testing.T) {
	meta := BookMeta{}.ApplyDefaults("my_book")
	if meta.Title != "my_book" {
		t.Errorf("Title = %q, want my_book", meta.Title)
	}
	if meta.Author != "Unknown Author" {
		t.Errorf("Author = %q, want Unknown Author", meta.Author)
	}
	if meta.Genres == nil || meta.Tags == nil {
		t.Errorf("lists must default to empty, got %v / %v", meta.Genres, meta.Tags)
	}

	// Existing values win.
	kept := BookMeta{Title: "T", Author: "A"}.ApplyDefaults("fallback")
	if kept.Title != "T" || kept.Author != "A" {
		t.Errorf("defaults overwrote provided values: %+v", kept)
	}
}

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chapterly/internal/segment"
	"chapterly/internal/util"
	"chapterly/pkg/domain"
	"chapterly/pkg/store"
)

// Importer turns raw source documents into persisted books and
// chapters. Books are matched by (title, author) so re-running an
// import updates chapters in place instead of duplicating them.
type Importer struct {
	store  store.Store
	logger *slog.Logger
}

func NewImporter(st store.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: st, logger: logger}
}

// ImportText ingests a plain-text document. Title and author come
// from the document's opening lines; chapters come from CHAPTER
// heading lines. Nothing is persisted when no chapter can be found.
func (im *Importer) ImportText(ctx context.Context, raw string) (domain.Book, int, error) {
	return im.ImportTextAs(ctx, raw, segment.BookMeta{})
}

// ImportTextAs is ImportText with authoritative metadata. Non-empty
// override fields win over the heuristics, which only see the
// document's opening lines.
func (im *Importer) ImportTextAs(ctx context.Context, raw string, override segment.BookMeta) (domain.Book, int, error) {
	doc := segment.Normalize(raw)
	meta := mergeMeta(segment.ExtractPlainTextMeta(doc), override)
	drafts := segment.PlainText{}.Segment(doc)
	if len(drafts) == 0 {
		return domain.Book{}, 0, fmt.Errorf("no chapters found in %q", meta.Title)
	}
	book, err := im.upsertBook(meta)
	if err != nil {
		return domain.Book{}, 0, err
	}
	if err := im.saveChapters(book.ID, drafts); err != nil {
		return domain.Book{}, 0, err
	}
	return book, len(drafts), nil
}

// ImportMarkdownDoc ingests a markdown document with optional YAML
// front matter. fallbackTitle fills in for a missing title field,
// typically the source file name. The returned cover name is the
// front matter cover reference, if any, for the caller to resolve.
func (im *Importer) ImportMarkdownDoc(ctx context.Context, fallbackTitle, raw string) (domain.Book, string, error) {
	doc := segment.Normalize(raw)
	meta, body, err := segment.SplitFrontMatter(doc)
	if err != nil {
		return domain.Book{}, "", fmt.Errorf("parse front matter: %w", err)
	}
	meta = meta.ApplyDefaults(fallbackTitle)
	drafts := segment.Markdown{}.Segment(body)
	if len(drafts) == 0 {
		return domain.Book{}, "", fmt.Errorf("no chapters found in %q", meta.Title)
	}
	book, err := im.upsertBook(meta)
	if err != nil {
		return domain.Book{}, "", err
	}
	if err := im.saveChapters(book.ID, drafts); err != nil {
		return domain.Book{}, "", err
	}
	return book, meta.Cover, nil
}

func mergeMeta(base, override segment.BookMeta) segment.BookMeta {
	if override.Title != "" {
		base.Title = override.Title
	}
	if override.Author != "" {
		base.Author = override.Author
	}
	if override.Description != "" {
		base.Description = override.Description
	}
	if override.Cover != "" {
		base.Cover = override.Cover
	}
	if len(override.Genres) > 0 {
		base.Genres = override.Genres
	}
	if len(override.Tags) > 0 {
		base.Tags = override.Tags
	}
	return base
}

// upsertBook finds an existing book by title and author or creates a
// new one, then folds in whatever metadata the source supplied.
func (im *Importer) upsertBook(meta segment.BookMeta) (domain.Book, error) {
	book, found, err := im.store.FindBookByTitleAuthor(meta.Title, meta.Author)
	if err != nil {
		return domain.Book{}, fmt.Errorf("look up book: %w", err)
	}
	now := time.Now().UTC()
	if !found {
		book = domain.Book{
			ID:        util.NewID(),
			Title:     meta.Title,
			Author:    meta.Author,
			CreatedAt: now,
		}
	}
	if meta.Description != "" {
		book.Description = meta.Description
	}
	if len(meta.Genres) > 0 {
		book.Genres = meta.Genres
	}
	if len(meta.Tags) > 0 {
		book.Tags = meta.Tags
	}
	book.UpdatedAt = now
	if err := im.store.SaveBook(book); err != nil {
		return domain.Book{}, fmt.Errorf("save book: %w", err)
	}
	return book, nil
}

func (im *Importer) saveChapters(bookID string, drafts []segment.ChapterDraft) error {
	now := time.Now().UTC()
	for i, d := range drafts {
		ch := domain.Chapter{
			ID:        util.NewID(),
			BookID:    bookID,
			Number:    d.Number,
			Title:     d.Title,
			Content:   d.Content,
			Position:  i,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := im.store.UpsertChapter(ch); err != nil {
			return fmt.Errorf("save chapter %s: %w", d.Number, err)
		}
	}
	return nil
}

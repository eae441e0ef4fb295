package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"chapterly/internal/segment"
	"chapterly/pkg/storage"
	"chapterly/pkg/store"
)

// Runner drives whole-catalog and whole-directory ingestion. A
// failure on one book is logged and skipped so the rest of the batch
// still lands.
type Runner struct {
	importer *Importer
	fetcher  *Fetcher
	covers   storage.CoverStore
	store    store.Store
	logger   *slog.Logger
}

func NewRunner(st store.Store, covers storage.CoverStore, fetcher *Fetcher, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		importer: NewImporter(st, logger),
		fetcher:  fetcher,
		covers:   covers,
		store:    st,
		logger:   logger,
	}
}

// IngestCatalog fetches and imports every catalog entry. It returns
// the number of books imported successfully.
func (r *Runner) IngestCatalog(ctx context.Context, entries []CatalogEntry) (int, error) {
	imported := 0
	for _, e := range entries {
		if err := r.ingestEntry(ctx, e); err != nil {
			r.logger.Warn("skipping catalog entry", "title", e.Title, "error", err)
			continue
		}
		imported++
	}
	if imported == 0 && len(entries) > 0 {
		return 0, fmt.Errorf("all %d catalog entries failed", len(entries))
	}
	return imported, nil
}

func (r *Runner) ingestEntry(ctx context.Context, e CatalogEntry) error {
	var (
		text      string
		cover     []byte
		coverType string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		text, err = r.fetcher.Text(gctx, e.TextURL())
		return err
	})
	g.Go(func() error {
		var err error
		cover, coverType, err = r.fetcher.Download(gctx, e.CoverURL())
		if err != nil {
			return fmt.Errorf("fetch cover: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	meta := segment.BookMeta{
		Title:       e.Title,
		Author:      e.Author,
		Description: e.Description(),
		Genres:      e.Genres,
		Tags:        e.Tags,
	}
	book, chapters, err := r.importer.ImportTextAs(ctx, text, meta)
	if err != nil {
		return err
	}

	key, err := r.covers.Put(ctx, book.ID, bytes.NewReader(cover), int64(len(cover)), coverType)
	if err != nil {
		return fmt.Errorf("upload cover: %w", err)
	}
	if book.CoverKey != key {
		book.CoverKey = key
		book.UpdatedAt = time.Now().UTC()
		if err := r.store.SaveBook(book); err != nil {
			// Drop the orphaned object so storage stays consistent
			// with the catalog.
			if derr := r.covers.Delete(ctx, key); derr != nil {
				r.logger.Warn("cover cleanup failed", "title", e.Title, "error", derr)
			}
			return fmt.Errorf("save cover key: %w", err)
		}
	}

	r.logger.Info("imported book", "title", e.Title, "chapters", chapters)
	return nil
}

// SeedCatalog inserts catalog metadata without fetching any text.
// Seeded books have no chapters until a real import runs over them.
func (r *Runner) SeedCatalog(entries []CatalogEntry) (int, error) {
	seeded := 0
	for _, e := range entries {
		meta := segment.BookMeta{
			Title:       e.Title,
			Author:      e.Author,
			Description: e.Description(),
			Genres:      e.Genres,
			Tags:        e.Tags,
		}
		if _, err := r.importer.upsertBook(meta); err != nil {
			r.logger.Warn("skipping seed entry", "title", e.Title, "error", err)
			continue
		}
		seeded++
	}
	return seeded, nil
}

// IngestDir imports every .md file in dir. Cover references in front
// matter are resolved relative to dir and uploaded. It returns the
// number of files imported successfully.
func (r *Runner) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read source dir: %w", err)
	}
	imported := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		if err := r.ingestFile(ctx, dir, e.Name()); err != nil {
			r.logger.Warn("skipping file", "file", e.Name(), "error", err)
			continue
		}
		imported++
	}
	return imported, nil
}

func (r *Runner) ingestFile(ctx context.Context, dir, name string) error {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	fallback := strings.TrimSuffix(name, filepath.Ext(name))
	book, coverRef, err := r.importer.ImportMarkdownDoc(ctx, fallback, string(raw))
	if err != nil {
		return err
	}
	if coverRef == "" {
		return nil
	}
	img, err := os.ReadFile(filepath.Join(dir, coverRef))
	if err != nil {
		r.logger.Warn("cover file missing", "file", name, "cover", coverRef)
		return nil
	}
	key, err := r.covers.Put(ctx, book.ID, bytes.NewReader(img), int64(len(img)), coverContentType(coverRef))
	if err != nil {
		r.logger.Warn("cover upload failed", "file", name, "error", err)
		return nil
	}
	book.CoverKey = key
	book.UpdatedAt = time.Now().UTC()
	if err := r.store.SaveBook(book); err != nil {
		if derr := r.covers.Delete(ctx, key); derr != nil {
			r.logger.Warn("cover cleanup failed", "file", name, "error", derr)
		}
		return fmt.Errorf("save cover key: %w", err)
	}
	return nil
}

func coverContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

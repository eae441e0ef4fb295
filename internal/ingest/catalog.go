package ingest

import "fmt"

// CatalogEntry is one public-domain book the remote ingest command
// knows how to fetch.
type CatalogEntry struct {
	GutenbergID int
	Title       string
	Author      string
	Genres      []string
	Tags        []string

	// TextSource and CoverSource override the default download
	// locations, for mirrors and local fixtures.
	TextSource  string
	CoverSource string
}

// TextURL is the plain-text download location, defaulting to Project
// Gutenberg.
func (e CatalogEntry) TextURL() string {
	if e.TextSource != "" {
		return e.TextSource
	}
	return fmt.Sprintf("https://www.gutenberg.org/files/%d/%d-0.txt", e.GutenbergID, e.GutenbergID)
}

// CoverURL is the cover image location, defaulting to a deterministic
// placeholder image for the title.
func (e CatalogEntry) CoverURL() string {
	if e.CoverSource != "" {
		return e.CoverSource
	}
	return fmt.Sprintf("https://picsum.photos/seed/%s/800/1200", e.Title)
}

// Description is the stock description used when the source text
// carries none.
func (e CatalogEntry) Description() string {
	return "A classic work by " + e.Author
}

// DefaultCatalog lists the books the remote command ingests.
var DefaultCatalog = []CatalogEntry{
	{
		GutenbergID: 1342,
		Title:       "Pride and Prejudice",
		Author:      "Jane Austen",
		Genres:      []string{"Classic Literature", "Romance"},
		Tags:        []string{"19th Century", "British Literature"},
	},
	{
		GutenbergID: 11,
		Title:       "Alice's Adventures in Wonderland",
		Author:      "Lewis Carroll",
		Genres:      []string{"Children's Literature", "Fantasy"},
		Tags:        []string{"Victorian Era", "Nonsense Literature"},
	},
	{
		GutenbergID: 1661,
		Title:       "The Adventures of Sherlock Holmes",
		Author:      "Arthur Conan Doyle",
		Genres:      []string{"Mystery", "Detective Fiction"},
		Tags:        []string{"Victorian Era", "Crime"},
	},
	{
		GutenbergID: 84,
		Title:       "Frankenstein",
		Author:      "Mary Shelley",
		Genres:      []string{"Gothic Fiction", "Science Fiction"},
		Tags:        []string{"Romantic Period", "Philosophical Novel"},
	},
	{
		GutenbergID: 1400,
		Title:       "Great Expectations",
		Author:      "Charles Dickens",
		Genres:      []string{"Classic Literature", "Coming-of-Age"},
		Tags:        []string{"Victorian Era", "Social Commentary"},
	},
}

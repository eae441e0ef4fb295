package domain

import "time"

// Book is one catalog entry. Books are created by ingestion and are
// read-only to the reading side; re-running ingestion over the same
// source refreshes metadata but never duplicates.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	CoverKey    string    `json:"-"`
	Genres      []string  `json:"genres"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Chapter holds the full text of one chapter. Number is a string so
// Roman numerals ("IV") and arbitrary numbering schemes survive
// ingestion untouched. (BookID, Number) is unique.
type Chapter struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Number    string    `json:"chapterNumber"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Position  int       `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChapterSummary is the projection used to build navigation lists
// without hauling full chapter content around.
type ChapterSummary struct {
	ID     string `json:"id"`
	Number string `json:"chapterNumber"`
	Title  string `json:"title"`
}

// Summary strips content from a chapter.
func (c Chapter) Summary() ChapterSummary {
	return ChapterSummary{ID: c.ID, Number: c.Number, Title: c.Title}
}

// ChapterWithBook is a chapter joined with its parent book's display
// metadata, as returned by the chapter endpoint.
type ChapterWithBook struct {
	Chapter
	BookTitle  string `json:"bookTitle"`
	BookAuthor string `json:"bookAuthor"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

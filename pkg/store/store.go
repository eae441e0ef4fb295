package store

import "chapterly/pkg/domain"

// Store defines persistence operations for users, books, and chapters.
// Lookups report absence as (zero, false, nil); errors are reserved for
// storage failures.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// books
	SaveBook(domain.Book) error
	FindBookByTitleAuthor(title, author string) (domain.Book, bool, error)
	GetBook(id string) (domain.Book, bool, error)
	ListBooks() ([]domain.Book, error)

	// chapters
	UpsertChapter(domain.Chapter) error
	ListChapterSummaries(bookID string) ([]domain.ChapterSummary, error)
	GetChapter(id string) (domain.ChapterWithBook, bool, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}

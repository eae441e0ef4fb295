package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type BookModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null;index:idx_books_title_author"`
	Author      string `gorm:"not null;index:idx_books_title_author"`
	Description string
	CoverKey    string
	Genres      datatypes.JSON `gorm:"type:jsonb"`
	Tags        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

// ChapterModel carries the (book_id, number) uniqueness that makes
// re-ingestion an update instead of a duplicate insert.
type ChapterModel struct {
	ID        string `gorm:"primaryKey"`
	BookID    string `gorm:"not null;uniqueIndex:idx_chapters_book_number"`
	Number    string `gorm:"not null;uniqueIndex:idx_chapters_book_number"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text;not null"`
	Position  int    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

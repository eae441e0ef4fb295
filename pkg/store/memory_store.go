package store

import (
	"sort"
	"sync"
	"time"

	"chapterly/internal/util"
	"chapterly/pkg/domain"
)

// MemoryStore keeps everything in-process. It backs tests and local
// development without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	email    map[string]string // email -> user ID
	books    map[string]domain.Book
	order    []string // book IDs in insertion order
	chapters map[string]domain.Chapter
	byBook   map[string]map[string]string // bookID -> number -> chapter ID
	sess     map[string]string            // token -> user ID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		email:    make(map[string]string),
		books:    make(map[string]domain.Book),
		chapters: make(map[string]domain.Chapter),
		byBook:   make(map[string]map[string]string),
		sess:     make(map[string]string),
	}
}

// SaveUser registers or updates a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// SaveBook stores or replaces a book record and tracks insertion order.
func (m *MemoryStore) SaveBook(b domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.books[b.ID]; !exists {
		m.order = append(m.order, b.ID)
	}
	m.books[b.ID] = b
	return nil
}

// FindBookByTitleAuthor scans for a book with the given title and author.
func (m *MemoryStore) FindBookByTitleAuthor(title, author string) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		b := m.books[id]
		if b.Title == title && b.Author == author {
			return b, true, nil
		}
	}
	return domain.Book{}, false, nil
}

// GetBook retrieves a book by ID.
func (m *MemoryStore) GetBook(id string) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

// ListBooks returns books in insertion order.
func (m *MemoryStore) ListBooks() ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.order))
	for _, id := range m.order {
		if b, ok := m.books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// UpsertChapter inserts or updates a chapter keyed by (bookID, number).
// An update keeps the existing chapter ID.
func (m *MemoryStore) UpsertChapter(c domain.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	numbers, ok := m.byBook[c.BookID]
	if !ok {
		numbers = make(map[string]string)
		m.byBook[c.BookID] = numbers
	}
	if existingID, ok := numbers[c.Number]; ok {
		existing := m.chapters[existingID]
		existing.Title = c.Title
		existing.Content = c.Content
		existing.Position = c.Position
		existing.UpdatedAt = time.Now().UTC()
		m.chapters[existingID] = existing
		return nil
	}
	numbers[c.Number] = c.ID
	m.chapters[c.ID] = c
	return nil
}

// ListChapterSummaries returns chapter projections for a book in
// ascending chapter order.
func (m *MemoryStore) ListChapterSummaries(bookID string) ([]domain.ChapterSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chapters := make([]domain.Chapter, 0, len(m.byBook[bookID]))
	for _, id := range m.byBook[bookID] {
		chapters = append(chapters, m.chapters[id])
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].Position < chapters[j].Position })
	res := make([]domain.ChapterSummary, 0, len(chapters))
	for _, c := range chapters {
		res = append(res, c.Summary())
	}
	return res, nil
}

// GetChapter returns a chapter with its parent book's title and author.
func (m *MemoryStore) GetChapter(id string) (domain.ChapterWithBook, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chapters[id]
	if !ok {
		return domain.ChapterWithBook{}, false, nil
	}
	book, ok := m.books[c.BookID]
	if !ok {
		return domain.ChapterWithBook{}, false, nil
	}
	return domain.ChapterWithBook{Chapter: c, BookTitle: book.Title, BookAuthor: book.Author}, true, nil
}

// NewSession creates a session token for a user.
func (m *MemoryStore) NewSession(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := util.NewID()
	m.sess[token] = userID
	return token, nil
}

// GetUserIDByToken resolves a token to its user ID.
func (m *MemoryStore) GetUserIDByToken(token string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uid, ok := m.sess[token]
	return uid, ok, nil
}

// DeleteSession removes a token mapping.
func (m *MemoryStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}

// Package app wires storage, sessions, covers, and the reader state
// machine into the application service the HTTP layer calls.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chapterly/internal/reader"
	"chapterly/internal/util"
	"chapterly/pkg/auth"
	"chapterly/pkg/domain"
	"chapterly/pkg/storage"
	"chapterly/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL    string
	SessionBackend string
	SessionTTL     time.Duration
	JWTSecret      string
	RedisAddr      string
	RedisPassword  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	CoverURLTTL    time.Duration

	// Injection points for tests; nil means build from the settings
	// above.
	Store    store.Store
	Sessions store.SessionStore
	Covers   storage.CoverStore
}

// App is the core application service.
type App struct {
	store    store.Store
	sessions store.SessionStore
	covers   storage.CoverStore
	readers  *reader.Manager
	coverTTL time.Duration
}

// New constructs the application with storage, session management, and
// cover storage chosen by configuration.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.CoverURLTTL == 0 {
		cfg.CoverURLTTL = time.Hour
	}

	dataStore := cfg.Store
	var memStore *store.MemoryStore
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			memStore = store.NewMemoryStore()
			dataStore = memStore
		} else {
			gormStore, err := store.NewGormStore(cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("init postgres store: %w", err)
			}
			dataStore = gormStore
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch cfg.SessionBackend {
		case "", "memory":
			if memStore != nil {
				sessionStore = memStore
			} else {
				sessionStore = store.NewMemoryStore()
			}
		case "redis":
			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return nil, fmt.Errorf("redisAddr is required for the redis session backend")
			}
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		case "jwt":
			jwtStore, err := store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
			if err != nil {
				return nil, fmt.Errorf("init jwt session store: %w", err)
			}
			sessionStore = jwtStore
		default:
			return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
		}
	}

	coverStore := cfg.Covers
	if coverStore == nil {
		if cfg.MinioEndpoint == "" {
			coverStore = storage.NewMemoryCoverStore()
		} else {
			minioStore, err := storage.NewMinioCoverStore(
				cfg.MinioEndpoint,
				cfg.MinioAccessKey,
				cfg.MinioSecretKey,
				cfg.MinioBucket,
				cfg.MinioUseSSL,
			)
			if err != nil {
				return nil, fmt.Errorf("init minio cover store: %w", err)
			}
			coverStore = minioStore
		}
	}

	a := &App{
		store:    dataStore,
		sessions: sessionStore,
		covers:   coverStore,
		coverTTL: cfg.CoverURLTTL,
	}
	a.readers = reader.NewManager(a)
	return a, nil
}

// Store exposes the underlying data store for ingestion tooling.
func (a *App) Store() store.Store { return a.store }

// Covers exposes the cover store for ingestion tooling.
func (a *App) Covers() storage.CoverStore { return a.covers }

// SignUp registers a new user and issues a session token.
func (a *App) SignUp(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, "", ErrEmailAndPasswordRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	_, exists, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create session: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create session: %w", err)
	}
	return user, token, nil
}

// Logout revokes a session token. Revoking an unknown token is not an
// error.
func (a *App) Logout(token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.DeleteSession(token)
}

// UserFromToken resolves a session token to its user.
func (a *App) UserFromToken(token string) (domain.User, bool, error) {
	userID, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	return a.store.GetUserByID(userID)
}

// ListBooks returns the catalog, optionally filtered to books carrying
// the given genre. Genre matching is case-insensitive.
func (a *App) ListBooks(genre string) ([]domain.Book, error) {
	books, err := a.store.ListBooks()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return books, nil
	}
	filtered := make([]domain.Book, 0, len(books))
	for _, b := range books {
		for _, g := range b.Genres {
			if strings.EqualFold(g, genre) {
				filtered = append(filtered, b)
				break
			}
		}
	}
	return filtered, nil
}

// BookByID returns one book.
func (a *App) BookByID(id string) (domain.Book, error) {
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return domain.Book{}, ErrBookNotFound
	}
	return book, nil
}

// BookChapters returns the ordered chapter list for a book. A book
// with no chapters reads as not found.
func (a *App) BookChapters(bookID string) ([]domain.ChapterSummary, error) {
	summaries, err := a.store.ListChapterSummaries(bookID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	if len(summaries) == 0 {
		return nil, ErrBookNotFound
	}
	return summaries, nil
}

// ChapterByID returns one chapter with its parent book's display
// metadata.
func (a *App) ChapterByID(id string) (domain.ChapterWithBook, error) {
	chapter, ok, err := a.store.GetChapter(id)
	if err != nil {
		return domain.ChapterWithBook{}, fmt.Errorf("fetch chapter: %w", err)
	}
	if !ok {
		return domain.ChapterWithBook{}, ErrChapterNotFound
	}
	return chapter, nil
}

// CoverURL returns a short-lived download URL for a book's cover.
func (a *App) CoverURL(ctx context.Context, bookID string) (string, error) {
	book, ok, err := a.store.GetBook(bookID)
	if err != nil {
		return "", fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return "", ErrBookNotFound
	}
	if book.CoverKey == "" {
		return "", ErrCoverNotFound
	}
	url, err := a.covers.URL(ctx, book.CoverKey, a.coverTTL)
	if err != nil {
		return "", fmt.Errorf("presign cover: %w", err)
	}
	return url, nil
}

// ListChapterSummaries implements reader.Library.
func (a *App) ListChapterSummaries(_ context.Context, bookID string) ([]domain.ChapterSummary, error) {
	return a.store.ListChapterSummaries(bookID)
}

// GetChapter implements reader.Library.
func (a *App) GetChapter(_ context.Context, chapterID string) (domain.ChapterWithBook, bool, error) {
	return a.store.GetChapter(chapterID)
}

// OpenReader creates a reader session over a book and loads its first
// chapter.
func (a *App) OpenReader(ctx context.Context, bookID string) (string, reader.View, error) {
	if _, ok, err := a.store.GetBook(bookID); err != nil {
		return "", reader.View{}, fmt.Errorf("fetch book: %w", err)
	} else if !ok {
		return "", reader.View{}, ErrBookNotFound
	}
	id, sess := a.readers.Create()
	return id, sess.Open(ctx, bookID), nil
}

// ReaderSession returns a live reader session.
func (a *App) ReaderSession(id string) (*reader.Session, error) {
	sess, ok := a.readers.Get(id)
	if !ok {
		return nil, ErrReaderSessionNotFound
	}
	return sess, nil
}

// CloseReader drops a reader session.
func (a *App) CloseReader(id string) error {
	if !a.readers.Close(id) {
		return ErrReaderSessionNotFound
	}
	return nil
}

package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do
	// not match. The message is shown to end users and deliberately does
	// not say which part was wrong.
	ErrInvalidCredentials = errors.New("Incorrect email address or password")

	ErrEmailAndPasswordRequired = errors.New("email and password required")
	ErrEmailAlreadyExists       = errors.New("email already exists")

	// ErrBookNotFound covers unknown book IDs and books without any
	// chapters; both read as "nothing to show" to clients.
	ErrBookNotFound    = errors.New("book not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrCoverNotFound   = errors.New("cover not found")

	ErrReaderSessionNotFound = errors.New("reader session not found")
)

package util

import "github.com/google/uuid"

// NewID returns a random identifier suitable for primary keys and
// session tokens.
func NewID() string {
	return uuid.NewString()
}

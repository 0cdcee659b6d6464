package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session maps an opaque session identifier to the user that owns it.
type Session struct {
	ID        string    `json:"session_id" db:"session_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ExpiredAt reports whether a session with the given lifetime is dead at
// now. A lifetime of zero or less never expires. The boundary is inclusive:
// a session whose age equals its lifetime is still alive.
func (s *Session) ExpiredAt(lifetime time.Duration, now time.Time) bool {
	if lifetime <= 0 {
		return false
	}
	return s.CreatedAt.Add(lifetime).Before(now)
}

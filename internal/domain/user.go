package domain

import (
	"github.com/google/uuid"
)

// User is the authenticated subject. SessionID and ResetToken are nil when
// the user has no current session or pending password reset.
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	SessionID      *string   `json:"-" db:"session_id"`
	ResetToken     *string   `json:"-" db:"reset_token"`
}

// ToJSON returns the public view of the user.
func (u *User) ToJSON() map[string]any {
	return map[string]any{
		"id":    u.ID.String(),
		"email": u.Email,
	}
}

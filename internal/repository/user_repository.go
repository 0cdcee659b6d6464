package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/google/uuid"
)

// Attributes filters or updates users by column name.
type Attributes map[string]any

// UserAttributes lists the columns of the users table. No other key is
// accepted by a UserRepository.
var UserAttributes = []string{"id", "email", "hashed_password", "session_id", "reset_token"}

type UserRepository interface {
	// Create inserts a user. It fails with ErrDuplicate when the email is
	// already registered.
	Create(ctx context.Context, user *domain.User) error

	// FindBy returns the first user matching every attribute.
	FindBy(ctx context.Context, attrs Attributes) (*domain.User, error)

	// Search returns all users matching every attribute, possibly none.
	Search(ctx context.Context, attrs Attributes) ([]*domain.User, error)

	// Update sets the given attributes on the user with the given id.
	Update(ctx context.Context, id uuid.UUID, attrs Attributes) error
}

// Keys validates attrs and returns its keys in a stable order.
func (a Attributes) Keys() ([]string, error) {
	keys := make([]string, 0, len(a))
	for k := range a {
		if !isUserAttribute(k) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAttribute, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func isUserAttribute(name string) bool {
	for _, attr := range UserAttributes {
		if attr == name {
			return true
		}
	}
	return false
}

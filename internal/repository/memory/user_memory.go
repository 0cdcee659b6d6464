package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/google/uuid"
)

type userRepository struct {
	mu    sync.RWMutex
	users []*domain.User
}

// NewUserRepository creates an in-memory user repository. Emails are unique,
// as in the Postgres users table.
func NewUserRepository() repository.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == user.ID {
			return fmt.Errorf("%w: user id %s", repository.ErrDuplicate, user.ID)
		}
		if u.Email == user.Email {
			return fmt.Errorf("%w: email", repository.ErrDuplicate)
		}
	}

	r.users = append(r.users, clone(user))
	return nil
}

func (r *userRepository) FindBy(ctx context.Context, attrs repository.Attributes) (*domain.User, error) {
	users, err := r.Search(ctx, attrs)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	return users[0], nil
}

func (r *userRepository) Search(ctx context.Context, attrs repository.Attributes) ([]*domain.User, error) {
	keys, err := attrs.Keys()
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*domain.User
	for _, u := range r.users {
		ok, err := matches(u, keys, attrs)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, clone(u))
		}
	}
	return found, nil
}

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, attrs repository.Attributes) error {
	keys, err := attrs.Keys()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var target *domain.User
	for _, u := range r.users {
		if u.ID == id {
			target = u
			break
		}
	}
	if target == nil {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}

	updated := clone(target)
	for _, k := range keys {
		if err := set(updated, k, attrs[k]); err != nil {
			return err
		}
	}
	for _, u := range r.users {
		if u != target && u.Email == updated.Email {
			return fmt.Errorf("%w: email", repository.ErrDuplicate)
		}
	}
	*target = *updated
	return nil
}

func matches(u *domain.User, keys []string, attrs repository.Attributes) (bool, error) {
	for _, k := range keys {
		want := attrs[k]
		switch k {
		case "id":
			id, err := toUUID(want)
			if err != nil {
				return false, err
			}
			if u.ID != id {
				return false, nil
			}
		case "email":
			s, err := toString(want)
			if err != nil {
				return false, err
			}
			if u.Email != s {
				return false, nil
			}
		case "hashed_password":
			s, err := toString(want)
			if err != nil {
				return false, err
			}
			if u.HashedPassword != s {
				return false, nil
			}
		case "session_id", "reset_token":
			s, err := toNullableString(want)
			if err != nil {
				return false, err
			}
			have := u.SessionID
			if k == "reset_token" {
				have = u.ResetToken
			}
			if !equalNullable(have, s) {
				return false, nil
			}
		}
	}
	return true, nil
}

func set(u *domain.User, key string, value any) error {
	switch key {
	case "id":
		id, err := toUUID(value)
		if err != nil {
			return err
		}
		u.ID = id
	case "email":
		s, err := toString(value)
		if err != nil {
			return err
		}
		u.Email = s
	case "hashed_password":
		s, err := toString(value)
		if err != nil {
			return err
		}
		u.HashedPassword = s
	case "session_id":
		s, err := toNullableString(value)
		if err != nil {
			return err
		}
		u.SessionID = s
	case "reset_token":
		s, err := toNullableString(value)
		if err != nil {
			return err
		}
		u.ResetToken = s
	}
	return nil
}

func toUUID(v any) (uuid.UUID, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: id: %v", repository.ErrInvalidAttribute, err)
		}
		return parsed, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: id has type %T", repository.ErrInvalidAttribute, v)
	}
}

func toString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", repository.ErrInvalidAttribute, v)
	}
	return s, nil
}

func toNullableString(v any) (*string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &s, nil
	case *string:
		if s == nil {
			return nil, nil
		}
		c := *s
		return &c, nil
	default:
		return nil, fmt.Errorf("%w: expected string or nil, got %T", repository.ErrInvalidAttribute, v)
	}
}

func equalNullable(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clone(u *domain.User) *domain.User {
	c := *u
	if u.SessionID != nil {
		s := *u.SessionID
		c.SessionID = &s
	}
	if u.ResetToken != nil {
		s := *u.ResetToken
		c.ResetToken = &s
	}
	return &c
}

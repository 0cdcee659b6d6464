package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE Postgres reports for a broken UNIQUE
// constraint.
const uniqueViolation = "23505"

const userColumns = `id, email, hashed_password, session_id, reset_token`

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, email, hashed_password, session_id, reset_token
		) VALUES (
			:id, :email, :hashed_password, :session_id, :reset_token
		)`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %s", repository.ErrDuplicate, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindBy retrieves the first user matching every attribute
func (r *userRepository) FindBy(ctx context.Context, attrs repository.Attributes) (*domain.User, error) {
	where, args, err := whereClause(attrs)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where + ` LIMIT 1`

	var user domain.User
	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// Search retrieves every user matching every attribute
func (r *userRepository) Search(ctx context.Context, attrs repository.Attributes) ([]*domain.User, error) {
	where, args, err := whereClause(attrs)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where

	var users []*domain.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

// Update sets the given columns on a single user
func (r *userRepository) Update(ctx context.Context, id uuid.UUID, attrs repository.Attributes) error {
	keys, err := attrs.Keys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets[i] = fmt.Sprintf("%s = $%d", k, i+1)
		args = append(args, columnValue(attrs[k]))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email", repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}

	return nil
}

// whereClause builds a WHERE clause from validated column names. A nil
// value matches NULL.
func whereClause(attrs repository.Attributes) (string, []any, error) {
	keys, err := attrs.Keys()
	if err != nil {
		return "", nil, err
	}
	if len(keys) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		v := columnValue(attrs[k])
		if v == nil {
			conds = append(conds, k+" IS NULL")
			continue
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", k, len(args)))
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func columnValue(v any) any {
	if s, ok := v.(*string); ok {
		if s == nil {
			return nil
		}
		return *s
	}
	return v
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "hashed_password", "session_id", "reset_token"})
}

func TestUserCreate_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	u := &domain.User{ID: uuid.New(), Email: "a@b.com", HashedPassword: "h"}

	mock.ExpectExec(`(?s)INSERT INTO users \(\s*id, email, hashed_password, session_id, reset_token\s*\) VALUES \(\s*\$1, \$2, \$3, \$4, \$5\s*\)`).
		WithArgs(u.ID, "a@b.com", "h", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &domain.User{ID: uuid.New(), Email: "a@b.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserCreate_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.User{ID: uuid.New(), Email: "a@b.com"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrDuplicate))
	assert.Contains(t, err.Error(), "db down")
}

func TestUserFindBy_BuildsSortedWhere(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, hashed_password, session_id, reset_token FROM users WHERE email = $1 AND reset_token IS NULL LIMIT 1`)).
		WithArgs("a@b.com").
		WillReturnRows(userRows().AddRow(id.String(), "a@b.com", "h", "sid", nil))

	u, err := repo.FindBy(context.Background(), repository.Attributes{"reset_token": nil, "email": "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	require.NotNil(t, u.SessionID)
	assert.Equal(t, "sid", *u.SessionID)
	assert.Nil(t, u.ResetToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindBy_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT .* FROM users WHERE session_id = \$1 LIMIT 1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindBy(context.Background(), repository.Attributes{"session_id": "nope"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserFindBy_InvalidAttributeNeverQueries(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	_, err := repo.FindBy(context.Background(), repository.Attributes{"first_name": "bob"})
	assert.ErrorIs(t, err, repository.ErrInvalidAttribute)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserSearch_ReturnsAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, hashed_password, session_id, reset_token FROM users WHERE email = $1`)).
		WithArgs("a@b.com").
		WillReturnRows(userRows().
			AddRow(uuid.NewString(), "a@b.com", "h1", nil, nil).
			AddRow(uuid.NewString(), "a@b.com", "h2", nil, nil))

	users, err := repo.Search(context.Background(), repository.Attributes{"email": "a@b.com"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "h2", users[1].HashedPassword)
}

func TestUserUpdate_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET hashed_password = $1, reset_token = $2 WHERE id = $3`)).
		WithArgs("newhash", nil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var cleared *string
	err := repo.Update(context.Background(), id, repository.Attributes{"reset_token": cleared, "hashed_password": "newhash"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdate_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE users SET session_id = \$1 WHERE id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), uuid.New(), repository.Attributes{"session_id": "sid"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserUpdate_InvalidAttribute(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	err := repo.Update(context.Background(), uuid.New(), repository.Attributes{"role": "admin"})
	assert.ErrorIs(t, err, repository.ErrInvalidAttribute)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionCreate_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)
	s := &domain.Session{ID: uuid.NewString(), UserID: uuid.New(), CreatedAt: time.Now()}

	mock.ExpectExec(`(?s)INSERT INTO user_sessions \(\s*session_id, user_id, created_at\s*\) VALUES \(\s*\$1, \$2, \$3\s*\)`).
		WithArgs(s.ID, s.UserID, s.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)
	userID := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT session_id, user_id, created_at\s+FROM user_sessions\s+WHERE session_id = \$1`).
		WithArgs("sid").
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "user_id", "created_at"}).AddRow("sid", userID.String(), created))

	s, err := repo.GetByID(context.Background(), "sid")
	require.NoError(t, err)
	assert.Equal(t, userID, s.UserID)
	assert.True(t, created.Equal(s.CreatedAt))
}

func TestSessionGetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`FROM user_sessions`).WithArgs("sid").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "sid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(`DELETE FROM user_sessions WHERE session_id = \$1`).
		WithArgs("sid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM user_sessions WHERE session_id = \$1`).
		WithArgs("sid").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM user_sessions WHERE session_id = \$1`).
		WithArgs("sid").
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, repo.Delete(context.Background(), "sid"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "sid"), repository.ErrNotFound)

	err := repo.Delete(context.Background(), "sid")
	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrNotFound))
}

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	assert.EqualError(t, RunMigrations(context.Background(), db), "boom")
}

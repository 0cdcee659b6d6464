package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/andressep95/session-auth/internal/repository/memory"
	"github.com/andressep95/session-auth/pkg/hash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastHash = hash.Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

type recordingNotifier struct {
	mu      sync.Mutex
	resets  map[string]string
	changed []string
	err     error
}

func (n *recordingNotifier) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.resets == nil {
		n.resets = make(map[string]string)
	}
	n.resets[to] = token
	return n.err
}

func (n *recordingNotifier) SendPasswordChangedEmail(ctx context.Context, to string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, to)
	return n.err
}

func newService(opts ...Option) (*AuthService, repository.UserRepository) {
	users := memory.NewUserRepository()
	opts = append([]Option{WithHashConfig(fastHash)}, opts...)
	return NewAuthService(users, zerolog.Nop(), opts...), users
}

func TestRegisterUser(t *testing.T) {
	s, users := newService()
	ctx := context.Background()

	user, err := s.RegisterUser(ctx, "bob@example.com", "MyPwdOfBob")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.NotEqual(t, "MyPwdOfBob", user.HashedPassword)

	stored, err := users.FindBy(ctx, repository.Attributes{"email": "bob@example.com"})
	require.NoError(t, err)
	assert.True(t, hash.Verify(stored.HashedPassword, "MyPwdOfBob"))

	_, err = s.RegisterUser(ctx, "bob@example.com", "other")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterUser_ConcurrentDuplicates(t *testing.T) {
	s, users := newService()
	ctx := context.Background()

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RegisterUser(ctx, "race@example.com", "pwd")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrUserAlreadyExists):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, dupes)

	all, err := users.Search(ctx, repository.Attributes{"email": "race@example.com"})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestValidLogin(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	_, err := s.RegisterUser(ctx, "bob@example.com", "MyPwdOfBob")
	require.NoError(t, err)

	assert.True(t, s.ValidLogin(ctx, "bob@example.com", "MyPwdOfBob"))
	assert.False(t, s.ValidLogin(ctx, "bob@example.com", "wrong"))
	assert.False(t, s.ValidLogin(ctx, "unknown@example.com", "MyPwdOfBob"))
}

func TestSessionLifecycle(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	user, err := s.RegisterUser(ctx, "bob@example.com", "pwd")
	require.NoError(t, err)

	_, err = s.CreateSession(ctx, "unknown@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	sid, err := s.CreateSession(ctx, "bob@example.com")
	require.NoError(t, err)
	_, err = uuid.Parse(sid)
	require.NoError(t, err)

	got, err := s.GetUserFromSessionID(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, s.DestroySession(ctx, user.ID))

	_, err = s.GetUserFromSessionID(ctx, sid)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetUserFromSessionID(ctx, "")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, s.DestroySession(ctx, uuid.New()), ErrUserNotFound)
}

func TestResetPasswordRoundTrip(t *testing.T) {
	notifier := &recordingNotifier{}
	s, users := newService(WithNotifier(notifier))
	ctx := context.Background()

	_, err := s.RegisterUser(ctx, "bob@example.com", "old")
	require.NoError(t, err)

	_, err = s.GetResetPasswordToken(ctx, "unknown@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	first, err := s.GetResetPasswordToken(ctx, "bob@example.com")
	require.NoError(t, err)
	token, err := s.GetResetPasswordToken(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, token)
	assert.Equal(t, token, notifier.resets["bob@example.com"])

	assert.ErrorIs(t, s.UpdatePassword(ctx, first, "stale"), ErrUserNotFound)
	require.NoError(t, s.UpdatePassword(ctx, token, "new"))

	assert.True(t, s.ValidLogin(ctx, "bob@example.com", "new"))
	assert.False(t, s.ValidLogin(ctx, "bob@example.com", "old"))
	assert.Equal(t, []string{"bob@example.com"}, notifier.changed)

	stored, err := users.FindBy(ctx, repository.Attributes{"email": "bob@example.com"})
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken)

	assert.ErrorIs(t, s.UpdatePassword(ctx, token, "again"), ErrUserNotFound)
	assert.ErrorIs(t, s.UpdatePassword(ctx, "", "again"), ErrUserNotFound)
}

func TestUpdatePassword_KeepResetToken(t *testing.T) {
	s, _ := newService(WithKeepResetToken(true))
	ctx := context.Background()

	_, err := s.RegisterUser(ctx, "bob@example.com", "old")
	require.NoError(t, err)

	token, err := s.GetResetPasswordToken(ctx, "bob@example.com")
	require.NoError(t, err)

	require.NoError(t, s.UpdatePassword(ctx, token, "new"))
	require.NoError(t, s.UpdatePassword(ctx, token, "newer"))
	assert.True(t, s.ValidLogin(ctx, "bob@example.com", "newer"))
}

func TestGetResetPasswordToken_NotifierFailureIsLogged(t *testing.T) {
	s, _ := newService(WithNotifier(&recordingNotifier{err: errors.New("smtp down")}))
	ctx := context.Background()

	_, err := s.RegisterUser(ctx, "bob@example.com", "old")
	require.NoError(t, err)

	token, err := s.GetResetPasswordToken(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

type brokenUsers struct {
	repository.UserRepository
}

func (brokenUsers) FindBy(ctx context.Context, attrs repository.Attributes) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestStorageErrorsAreNotUserNotFound(t *testing.T) {
	s := NewAuthService(brokenUsers{}, zerolog.Nop())
	ctx := context.Background()

	_, err := s.GetResetPasswordToken(ctx, "bob@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	_, err = s.RegisterUser(ctx, "bob@example.com", "pwd")
	assert.ErrorContains(t, err, "connection refused")

	assert.False(t, s.ValidLogin(ctx, "bob@example.com", "pwd"))
}

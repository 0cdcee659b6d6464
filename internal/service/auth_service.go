package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/andressep95/session-auth/pkg/email"
	"github.com/andressep95/session-auth/pkg/hash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

type CredentialsRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type ResetTokenRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
}

type UpdatePasswordRequest struct {
	Email       string `json:"email" form:"email" validate:"required"`
	ResetToken  string `json:"reset_token" form:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required"`
}

// AuthService registers users and manages their login session and password
// reset token, both stored on the user record.
type AuthService struct {
	users          repository.UserRepository
	notifier       email.Notifier
	keepResetToken bool
	hashConfig     hash.Argon2Config
	logger         zerolog.Logger
}

type Option func(*AuthService)

// WithNotifier emails reset tokens and password change confirmations.
func WithNotifier(n email.Notifier) Option {
	return func(s *AuthService) { s.notifier = n }
}

// WithKeepResetToken leaves a consumed reset token in place so it can be
// used again until the next token is issued.
func WithKeepResetToken(keep bool) Option {
	return func(s *AuthService) { s.keepResetToken = keep }
}

func WithHashConfig(cfg hash.Argon2Config) Option {
	return func(s *AuthService) { s.hashConfig = cfg }
}

func NewAuthService(users repository.UserRepository, logger zerolog.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		users:      users,
		hashConfig: hash.DefaultConfig,
		logger:     logger.With().Str("component", "auth_service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUser creates a user with a hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, emailAddr, password string) (*domain.User, error) {
	_, err := s.users.FindBy(ctx, repository.Attributes{"email": emailAddr})
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := hash.HashPasswordWithConfig(password, s.hashConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{ID: uuid.New(), Email: emailAddr, HashedPassword: hashed}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

// ValidLogin reports whether password matches the user registered under
// emailAddr.
func (s *AuthService) ValidLogin(ctx context.Context, emailAddr, password string) bool {
	user, err := s.users.FindBy(ctx, repository.Attributes{"email": emailAddr})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("login lookup failed")
		}
		return false
	}
	return hash.Verify(user.HashedPassword, password)
}

// CreateSession stores a new session ID on the user and returns it.
func (s *AuthService) CreateSession(ctx context.Context, emailAddr string) (string, error) {
	user, err := s.findUser(ctx, repository.Attributes{"email": emailAddr})
	if err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	if err := s.users.Update(ctx, user.ID, repository.Attributes{"session_id": sessionID}); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID, nil
}

// GetUserFromSessionID returns the user holding sessionID.
func (s *AuthService) GetUserFromSessionID(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, ErrUserNotFound
	}
	return s.findUser(ctx, repository.Attributes{"session_id": sessionID})
}

// DestroySession clears the session ID of the user.
func (s *AuthService) DestroySession(ctx context.Context, userID uuid.UUID) error {
	err := s.users.Update(ctx, userID, repository.Attributes{"session_id": nil})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// GetResetPasswordToken issues a fresh reset token for the user, replacing
// any previous one.
func (s *AuthService) GetResetPasswordToken(ctx context.Context, emailAddr string) (string, error) {
	user, err := s.findUser(ctx, repository.Attributes{"email": emailAddr})
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.users.Update(ctx, user.ID, repository.Attributes{"reset_token": token}); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
			s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to deliver reset token")
		}
	}
	return token, nil
}

// UpdatePassword sets a new password on the user holding resetToken.
func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, password string) error {
	if resetToken == "" {
		return ErrUserNotFound
	}
	user, err := s.findUser(ctx, repository.Attributes{"reset_token": resetToken})
	if err != nil {
		return err
	}

	hashed, err := hash.HashPasswordWithConfig(password, s.hashConfig)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	attrs := repository.Attributes{"hashed_password": hashed}
	if !s.keepResetToken {
		attrs["reset_token"] = nil
	}
	if err := s.users.Update(ctx, user.ID, attrs); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.SendPasswordChangedEmail(ctx, user.Email); err != nil {
			s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to send password changed email")
		}
	}
	return nil
}

func (s *AuthService) findUser(ctx context.Context, attrs repository.Attributes) (*domain.User, error) {
	user, err := s.users.FindBy(ctx, attrs)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

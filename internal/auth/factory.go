package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/andressep95/session-auth/internal/config"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/andressep95/session-auth/internal/repository/memory"
	"github.com/rs/zerolog"
)

const (
	TypeAuth           = "auth"
	TypeBasic          = "basic_auth"
	TypeSession        = "session_auth"
	TypeSessionExpiry  = "session_exp_auth"
	TypeSessionDurable = "session_db_auth"
)

var ErrUnknownType = errors.New("unknown auth type")

// Deps are the stores an authenticator is built from.
type Deps struct {
	Users repository.UserRepository
	// DurableSessions backs session_db_auth.
	DurableSessions repository.SessionRepository
	Now             func() time.Time
	Logger          zerolog.Logger
}

// New builds the authenticator selected by cfg.Type. It returns nil when no
// type is configured, which disables the request gate.
func New(cfg config.AuthConfig, deps Deps) (Authenticator, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger := deps.Logger.With().Str("auth_type", cfg.Type).Logger()

	switch cfg.Type {
	case "":
		return nil, nil
	case TypeAuth:
		return NewAuth(cfg.SessionName), nil
	case TypeBasic:
		return NewBasicAuth(deps.Users, logger), nil
	case TypeSession:
		return NewSessionAuth(cfg.SessionName, memory.NewSessionRepository(), deps.Users, deps.Now, logger), nil
	case TypeSessionExpiry:
		store := WithExpiry(memory.NewSessionRepository(), cfg.SessionDuration, deps.Now)
		return NewSessionAuth(cfg.SessionName, store, deps.Users, deps.Now, logger), nil
	case TypeSessionDurable:
		if deps.DurableSessions == nil {
			return nil, fmt.Errorf("%s requires a durable session store", TypeSessionDurable)
		}
		store := WithExpiry(deps.DurableSessions, cfg.SessionDuration, deps.Now)
		return NewSessionAuth(cfg.SessionName, store, deps.Users, deps.Now, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/andressep95/session-auth/pkg/hash"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const basicPrefix = "Basic "

// BasicAuth resolves users from "Authorization: Basic base64(email:password)".
type BasicAuth struct {
	Auth
	users  repository.UserRepository
	logger zerolog.Logger
}

func NewBasicAuth(users repository.UserRepository, logger zerolog.Logger) *BasicAuth {
	return &BasicAuth{users: users, logger: logger}
}

// ExtractBase64AuthorizationHeader returns what follows the case-sensitive
// "Basic " prefix.
func (a *BasicAuth) ExtractBase64AuthorizationHeader(header string) (string, bool) {
	if !strings.HasPrefix(header, basicPrefix) {
		return "", false
	}
	return header[len(basicPrefix):], true
}

// DecodeBase64AuthorizationHeader decodes standard, strictly padded base64
// into UTF-8 text.
func (a *BasicAuth) DecodeBase64AuthorizationHeader(encoded string) (string, bool) {
	raw, err := base64.StdEncoding.Strict().DecodeString(encoded)
	if err != nil || !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// ExtractUserCredentials splits on the first colon; later colons belong to
// the password.
func (a *BasicAuth) ExtractUserCredentials(decoded string) (email, password string, ok bool) {
	return strings.Cut(decoded, ":")
}

// UserObjectFromCredentials returns the first user registered under email
// whose password matches.
func (a *BasicAuth) UserObjectFromCredentials(ctx context.Context, email, password string) (*domain.User, bool) {
	users, err := a.users.Search(ctx, repository.Attributes{"email": email})
	if err != nil {
		a.logger.Warn().Err(err).Msg("basic auth: user search failed")
		return nil, false
	}
	for _, u := range users {
		if hash.Verify(u.HashedPassword, password) {
			return u, true
		}
	}
	return nil, false
}

func (a *BasicAuth) CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	header, ok := a.AuthorizationHeader(c)
	if !ok {
		return nil, false
	}
	encoded, ok := a.ExtractBase64AuthorizationHeader(header)
	if !ok {
		return nil, false
	}
	decoded, ok := a.DecodeBase64AuthorizationHeader(encoded)
	if !ok {
		return nil, false
	}
	email, password, ok := a.ExtractUserCredentials(decoded)
	if !ok {
		return nil, false
	}
	return a.UserObjectFromCredentials(c.UserContext(), email, password)
}

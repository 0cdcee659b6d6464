package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/andressep95/session-auth/internal/repository/memory"
	"github.com/andressep95/session-auth/pkg/hash"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testHashConfig = hash.Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func seedUser(t *testing.T, users repository.UserRepository, email, password string) *domain.User {
	t.Helper()

	hashed, err := hash.HashPasswordWithConfig(password, testHashConfig)
	require.NoError(t, err)

	u := &domain.User{ID: uuid.New(), Email: email, HashedPassword: hashed}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

// onRequest runs fn inside a Fiber handler serving req.
func onRequest(t *testing.T, req *http.Request, fn func(c *fiber.Ctx)) {
	t.Helper()

	app := fiber.New()
	app.All("/*", func(c *fiber.Ctx) error {
		fn(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func currentUser(t *testing.T, a Authenticator, req *http.Request) (*domain.User, bool) {
	t.Helper()

	var (
		user *domain.User
		ok   bool
	)
	onRequest(t, req, func(c *fiber.Ctx) { user, ok = a.CurrentUser(c) })
	return user, ok
}

func destroySession(t *testing.T, a SessionAuthenticator, req *http.Request) bool {
	t.Helper()

	var ok bool
	onRequest(t, req, func(c *fiber.Ctx) { ok = a.DestroySession(c) })
	return ok
}

func cookieRequest(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: name, Value: value})
	return req
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func newUsers() repository.UserRepository {
	return memory.NewUserRepository()
}

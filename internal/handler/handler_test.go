package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/andressep95/session-auth/internal/auth"
	"github.com/andressep95/session-auth/internal/config"
	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/handler/middleware"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/andressep95/session-auth/internal/repository/memory"
	"github.com/andressep95/session-auth/internal/service"
	"github.com/andressep95/session-auth/pkg/hash"
	"github.com/andressep95/session-auth/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const apiCookie = "_my_session_id"

var excludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/api/v1/auth_session/login/",
}

type testServer struct {
	handler http.Handler
	users   repository.UserRepository
	service *service.AuthService
}

func newTestServer(t *testing.T, authType string, checks map[string]Check) *testServer {
	t.Helper()

	users := memory.NewUserRepository()
	svc := service.NewAuthService(users, zerolog.Nop(),
		service.WithHashConfig(hash.Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}),
	)

	a, err := auth.New(config.AuthConfig{Type: authType, SessionName: apiCookie}, auth.Deps{
		Users:           users,
		DurableSessions: memory.NewSessionRepository(),
		Logger:          zerolog.Nop(),
	})
	require.NoError(t, err)

	v := validator.NewValidator()
	h := Handlers{
		Index:   NewIndexHandler(users),
		Users:   NewUserHandler(users),
		Account: NewAccountHandler(svc, v),
		Health:  NewHealthHandler(checks),
	}
	if sa, ok := a.(auth.SessionAuthenticator); ok {
		h.Session = NewSessionAuthHandler(sa, users, v)
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware(zerolog.Nop()))
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })
	SetupRoutes(app, h, middleware.Gatekeeper(a, excludedPaths))

	return &testServer{handler: adaptor.FiberApp(app), users: users, service: svc}
}

func (s *testServer) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	u, err := s.service.RegisterUser(context.Background(), email, password)
	require.NoError(t, err)
	return u
}

func cookieValue(t *testing.T, resp *http.Response, name string) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %s not set", name)
	return ""
}

var errDown = errors.New("connection refused")

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dkp-tracker/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	users map[string]*auth.User
}

func (s *stubValidator) ValidateToken(ctx context.Context, token string) (*auth.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, auth.ErrInvalidSession
}

func (s *stubValidator) Ping(ctx context.Context) error { return nil }

func newGuardedApp(t *testing.T) *fiber.App {
	t.Helper()
	session := auth.NewSession(&stubValidator{users: map[string]*auth.User{
		"tok-alice": {ID: "U1", Username: "alice"},
	}})
	session.StartWatch(context.Background())
	require.NoError(t, session.Wait(context.Background()))

	app := fiber.New()
	guard := SessionGuard(session)

	app.Get("/dashboard", guard, func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		require.NotNil(t, u)
		return c.JSON(fiber.Map{"user": u.Username})
	})
	app.Get("/login", guard, func(c *fiber.Ctx) error {
		return c.SendString("login page")
	})
	return app
}

func TestSessionGuard_BlocksUnauthenticated(t *testing.T) {
	app := newGuardedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionGuard_PassesAuthenticated(t *testing.T) {
	app := newGuardedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Session-Token", "tok-alice")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionGuard_BearerTokenAccepted(t *testing.T) {
	app := newGuardedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer tok-alice")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionGuard_SignedInUserLeavesLogin(t *testing.T) {
	app := newGuardedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("X-Session-Token", "tok-alice")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, DashboardPath, resp.Header.Get("Location"))
}

func TestSessionGuard_AnonymousCanReachLogin(t *testing.T) {
	app := newGuardedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

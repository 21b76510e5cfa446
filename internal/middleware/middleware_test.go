package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanex66/vouchly/internal/auth"
)

type fakeAdmins struct {
	admins map[int64]bool
	banned map[int64]bool
	err    error
}

func (f *fakeAdmins) IsAdmin(_ context.Context, userID int64) (bool, error) {
	return f.admins[userID], f.err
}

func (f *fakeAdmins) IsUserBanned(_ context.Context, userID int64) (bool, error) {
	return f.banned[userID], f.err
}

func newTestApp(issuer *auth.Issuer, admins AdminChecker) *fiber.App {
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": GetUserID(c), "username": GetUsername(c)})
	}
	app.Get("/public", OptionalAuth(issuer), whoami)
	app.Get("/me", JWTAuth(issuer), BanCheck(admins), whoami)
	app.Get("/admin", JWTAuth(issuer), AdminAuth(admins), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"admin_id": GetAdminID(c), "is_admin": IsAdmin(c)})
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestJWTAuth(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	app := newTestApp(issuer, &fakeAdmins{})
	token, _, err := issuer.Generate(9, "ada")
	require.NoError(t, err)

	status, body := get(t, app, "/me", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"user_id":9,"username":"ada"}`, body)

	status, _ = get(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = get(t, app, "/me", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	app := newTestApp(issuer, &fakeAdmins{})

	status, body := get(t, app, "/public", "garbage")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"user_id":0,"username":""}`, body)
}

func TestAdminAuth(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	admins := &fakeAdmins{admins: map[int64]bool{1: true}}
	app := newTestApp(issuer, admins)

	adminToken, _, _ := issuer.Generate(1, "root")
	userToken, _, _ := issuer.Generate(2, "ada")

	status, body := get(t, app, "/admin", adminToken)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"admin_id":1,"is_admin":true}`, body)

	status, _ = get(t, app, "/admin", userToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	admins.err = errors.New("db down")
	status, _ = get(t, app, "/admin", adminToken)
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestBanCheck(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	app := newTestApp(issuer, &fakeAdmins{banned: map[int64]bool{3: true}})

	token, _, _ := issuer.Generate(3, "spammer")
	status, _ := get(t, app, "/me", token)
	assert.Equal(t, fiber.StatusForbidden, status)
}

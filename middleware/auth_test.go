package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biosecret/go-todo/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateApp(t *testing.T, codec *auth.TokenCodec) (*fiber.App, *bool) {
	t.Helper()
	log, _ := test.NewNullLogger()
	called := false

	app := fiber.New()
	app.Get("/me", AuthGate(codec, log), func(c *fiber.Ctx) error {
		called = true
		return c.JSON(fiber.Map{
			"header": c.Get("userName"),
			"local":  UserName(c),
		})
	})
	return app, &called
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&m))
	return m
}

func TestAuthGate_MissingToken(t *testing.T) {
	app, called := newGateApp(t, auth.NewTokenCodec([]byte("s"), time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, *called)
	assert.Equal(t, map[string]any{"status": "fail", "message": "Unauthorized"}, decode(t, resp.Body))
}

func TestAuthGate_InvalidToken(t *testing.T) {
	app, called := newGateApp(t, auth.NewTokenCodec([]byte("s"), time.Hour))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(TokenHeader, "garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, *called)
}

func TestAuthGate_ForeignSecret(t *testing.T) {
	app, called := newGateApp(t, auth.NewTokenCodec([]byte("s"), time.Hour))
	token, err := auth.NewTokenCodec([]byte("other"), time.Hour).Issue("alice")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(TokenHeader, token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, *called)
}

func TestAuthGate_ExpiredToken(t *testing.T) {
	app, called := newGateApp(t, auth.NewTokenCodec([]byte("s"), time.Hour))
	token, err := auth.NewTokenCodec([]byte("s"), -time.Minute).Issue("alice")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(TokenHeader, token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, *called)
}

func TestAuthGate_ValidToken(t *testing.T) {
	codec := auth.NewTokenCodec([]byte("s"), time.Hour)
	app, called := newGateApp(t, codec)
	token, err := codec.Issue("alice")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(TokenHeader, token)
	// a client supplied username must not survive the gate
	req.Header.Set(UserNameHeader, "mallory")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, *called)
	assert.Equal(t, map[string]any{"header": "alice", "local": "alice"}, decode(t, resp.Body))
}

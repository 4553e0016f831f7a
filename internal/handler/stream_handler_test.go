package handler

import (
	"net/http/httptest"
	"testing"

	"doc-assistant-gw/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handshakeSecret = "handshake-secret"

func newHandshakeApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := NewStreamHandler(nil, handshakeSecret, logger.NewNopLogger())
	h.RegisterRoutes(app)
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestServeWsRejectsMissingToken(t *testing.T) {
	app := newHandshakeApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServeWsRejectsWrongSecret(t *testing.T) {
	app := newHandshakeApp(t)
	token := signToken(t, "some-other-secret", jwt.MapClaims{"user_id": "user-1"})

	resp, err := app.Test(httptest.NewRequest("GET", "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServeWsRejectsTokenWithoutUserId(t *testing.T) {
	app := newHandshakeApp(t)
	token := signToken(t, handshakeSecret, jwt.MapClaims{"sub": "user-1"})

	resp, err := app.Test(httptest.NewRequest("GET", "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

// A token signed with the configured secret passes auth; without upgrade
// headers the handshake then stops at 426.
func TestServeWsAcceptsConfiguredSecret(t *testing.T) {
	app := newHandshakeApp(t)
	token := signToken(t, handshakeSecret, jwt.MapClaims{"user_id": "user-1"})

	resp, err := app.Test(httptest.NewRequest("GET", "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestServeWsReadsAuthorizationHeader(t *testing.T) {
	app := newHandshakeApp(t)
	token := signToken(t, handshakeSecret, jwt.MapClaims{"user_id": "user-1"})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

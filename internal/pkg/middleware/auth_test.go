package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrolytics/vercel-marketplace/internal/pkg/installationctx"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", RequireIntegrationAuth(), func(c *fiber.Ctx) error {
		claims := installationctx.GetClaims(c)
		return c.JSON(claims)
	})
	return app
}

func TestRequireIntegrationAuth_ValidToken(t *testing.T) {
	t.Setenv("INTEGRATION_CLIENT_SECRET", "client-secret")
	app := newAuthTestApp()

	token := signTestToken(t, "client-secret", jwt.MapClaims{
		"iss":             "https://vercel.com",
		"installation_id": "icfg_1",
		"user_id":         "user_1",
		"exp":             time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireIntegrationAuth_MissingToken(t *testing.T) {
	t.Setenv("INTEGRATION_CLIENT_SECRET", "client-secret")
	app := newAuthTestApp()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireIntegrationAuth_WrongSecret(t *testing.T) {
	t.Setenv("INTEGRATION_CLIENT_SECRET", "client-secret")
	app := newAuthTestApp()

	token := signTestToken(t, "other-secret", jwt.MapClaims{
		"iss":             "https://vercel.com",
		"installation_id": "icfg_1",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireIntegrationAuth_WrongIssuer(t *testing.T) {
	t.Setenv("INTEGRATION_CLIENT_SECRET", "client-secret")
	app := newAuthTestApp()

	token := signTestToken(t, "client-secret", jwt.MapClaims{
		"iss":             "https://evil.example.com",
		"installation_id": "icfg_1",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireIntegrationAuth_MissingInstallationID(t *testing.T) {
	t.Setenv("INTEGRATION_CLIENT_SECRET", "client-secret")
	app := newAuthTestApp()

	token := signTestToken(t, "client-secret", jwt.MapClaims{
		"iss": "https://vercel.com",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireIntegrationAuth_ExpiredToken(t *testing.T) {
	t.Setenv("INTEGRATION_CLIENT_SECRET", "client-secret")
	app := newAuthTestApp()

	token := signTestToken(t, "client-secret", jwt.MapClaims{
		"iss":             "https://vercel.com",
		"installation_id": "icfg_1",
		"exp":             time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

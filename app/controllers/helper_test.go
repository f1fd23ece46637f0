package controllers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/entrolytics/vercel-marketplace/app/repository"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/entrolytics"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/middleware"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/partner"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/vercel"
)

const testClientSecret = "client-secret"

type controllerFixture struct {
	app      *fiber.App
	repos    *repository.Repositories
	counters *testUpstream
}

type testUpstream struct {
	deployments    int
	websiteCreates int
}

// newControllerFixture wires handlers against miniredis and stub upstream
// servers, registering the same paths the routers do but without the
// Redis-backed rate limiter.
func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repos := repository.NewRepositories(client)

	counters := &testUpstream{}

	analyticsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/websites":
			counters.websiteCreates++
			_ = json.NewEncoder(w).Encode(map[string]string{"websiteId": "web_test"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/deployments"):
			counters.deployments++
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(analyticsSrv.Close)

	vercelSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/oauth/access_token":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token":    "tok_exchanged",
				"token_type":      "Bearer",
				"installation_id": "icfg_cb",
			})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/env"):
			_ = json.NewEncoder(w).Encode(map[string]any{"created": []map[string]string{}, "updated": []map[string]string{}})
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/env"):
			_ = json.NewEncoder(w).Encode(map[string]any{"envs": []map[string]string{}})
		case r.Method == http.MethodGet && r.URL.Path == "/v9/projects":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"projects": []map[string]string{{"id": "prj_1", "name": "myapp"}},
			})
		case r.URL.Path == "/v2/user":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "user_1", "name": "Testuser"})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(vercelSrv.Close)

	t.Setenv("VERCEL_API_BASE_URL", vercelSrv.URL)
	t.Setenv("ENTROLYTICS_API_URL", analyticsSrv.URL)
	t.Setenv("ENTROLYTICS_INTEGRATION_SECRET", "integration-secret")
	t.Setenv("INTEGRATION_CLIENT_ID", "client-id")
	t.Setenv("INTEGRATION_CLIENT_SECRET", testClientSecret)

	svc := partner.NewService(partner.Dependencies{
		Installations: repos.Installations,
		Resources:     repos.Resources,
		Credentials:   repos.Credentials,
		Vercel:        vercel.NewClientFromEnv(repos.Credentials),
		Analytics:     entrolytics.NewClientFromEnv(),
	})
	SetPartnerService(svc)
	SetWebhookEventRepository(repos.WebhookEvents)
	t.Cleanup(func() {
		SetPartnerService(nil)
		SetWebhookEventRepository(nil)
	})

	app := fiber.New()
	v1 := app.Group("/v1", middleware.RequireIntegrationAuth())
	v1.Put("/installations/:installationId", HandleInstallIntegration)
	v1.Get("/installations/:installationId", HandleGetInstallation)
	v1.Delete("/installations/:installationId", HandleUninstallIntegration)
	v1.Get("/installations/:installationId/resources", HandleListResources)
	v1.Post("/installations/:installationId/resources", HandleProvisionResource)
	v1.Get("/installations/:installationId/resources/:resourceId", HandleGetResource)
	v1.Delete("/installations/:installationId/resources/:resourceId", HandleDeleteResource)
	v1.Get("/products/:productId/plans", HandleListBillingPlans)
	v1.Get("/configurations", HandleListConfigurations)
	v1.Get("/configurations/:configurationId", HandleGetConfiguration)
	v1.Put("/configurations/:configurationId", HandleUpdateConfiguration)
	v1.Delete("/configurations/:configurationId", HandleDeleteConfiguration)
	app.Post("/webhook", HandleWebhook)
	app.Get("/callback", HandleCallback)

	return &controllerFixture{app: app, repos: repos, counters: counters}
}

func bearerToken(t *testing.T, installationID string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss":             "https://vercel.com",
		"installation_id": installationID,
		"user_id":         "user_1",
		"exp":             time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testClientSecret))
	require.NoError(t, err)
	return signed
}

func authedRequest(t *testing.T, method, target, installationID string, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, installationID))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func webhookRequest(body, secret string) *http.Request {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(body))
	sig := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-vercel-signature", sig)
	return req
}

func decodeJSONBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

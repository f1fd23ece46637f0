package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook_InvalidSignature(t *testing.T) {
	f := newControllerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("x-vercel-signature", "deadbeef")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	events, err := f.repos.WebhookEvents.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestWebhook_TamperedBody(t *testing.T) {
	f := newControllerFixture(t)

	req := webhookRequest(`{"id":"evt_1"}`, testClientSecret)
	tampered := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"id":"evt_2"}`))
	tampered.Header.Set("x-vercel-signature", req.Header.Get("x-vercel-signature"))
	resp, err := f.app.Test(tampered, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebhook_MalformedJSONStillAccepted(t *testing.T) {
	f := newControllerFixture(t)

	resp, err := f.app.Test(webhookRequest(`not json at all`, testClientSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	events, err := f.repos.WebhookEvents.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestWebhook_UnknownTypeIsAudited(t *testing.T) {
	f := newControllerFixture(t)

	body := `{"id":"evt_9","type":"domain.created","createdAt":1717000000000,"payload":{"domain":"example.com"}}`
	resp, err := f.app.Test(webhookRequest(body, testClientSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	events, err := f.repos.WebhookEvents.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt_9", events[0].ID)
	assert.Equal(t, "domain.created", events[0].Type)
}

func TestWebhook_ConfigurationRemovedUninstalls(t *testing.T) {
	f := newControllerFixture(t)
	installFixture(t, f, "icfg_1")

	body := `{
		"id": "evt_10",
		"type": "integration-configuration.removed",
		"createdAt": 1717000000000,
		"payload": {"configuration": {"id": "icfg_1"}}
	}`
	resp, err := f.app.Test(webhookRequest(body, testClientSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := authedRequest(t, http.MethodGet, "/v1/installations/icfg_1", "icfg_1", "")
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Redelivery stays a no-op and still answers 200.
	resp, err = f.app.Test(webhookRequest(body, testClientSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhook_DeploymentCreatedTracked(t *testing.T) {
	f := newControllerFixture(t)
	installFixture(t, f, "icfg_1")
	provisionFixture(t, f, "icfg_1", provisionBody)

	body := `{
		"id": "evt_11",
		"type": "deployment.created",
		"createdAt": 1717000000000,
		"payload": {
			"deployment": {"id": "dpl_1", "url": "my-site-abc.vercel.app", "meta": {"githubCommitSha": "deadbeef"}},
			"project": {"id": "prj_1"}
		}
	}`
	resp, err := f.app.Test(webhookRequest(body, testClientSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.counters.deployments)
}

func TestWebhook_DeploymentCreatedUnlinkedProject(t *testing.T) {
	f := newControllerFixture(t)

	body := `{
		"id": "evt_12",
		"type": "deployment.created",
		"createdAt": 1717000000000,
		"payload": {"deployment": {"id": "dpl_1"}, "project": {"id": "prj_ghost"}}
	}`
	resp, err := f.app.Test(webhookRequest(body, testClientSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, f.counters.deployments)
}

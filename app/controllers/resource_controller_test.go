package controllers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrolytics/vercel-marketplace/app/models"
)

const provisionBody = `{
	"productId": "entrolytics",
	"name": "my-site",
	"billingPlanId": "free",
	"metadata": {"projectId": "prj_1", "domain": "my-site.dev"}
}`

func installFixture(t *testing.T, f *controllerFixture, installationID string) {
	t.Helper()

	req := authedRequest(t, http.MethodPut, "/v1/installations/"+installationID, installationID, installBody)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func provisionFixture(t *testing.T, f *controllerFixture, installationID, body string) models.ProvisionedResource {
	t.Helper()

	req := authedRequest(t, http.MethodPost, "/v1/installations/"+installationID+"/resources", installationID, body)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out models.ProvisionedResource
	decodeJSONBody(t, resp, &out)
	return out
}

func TestProvisionResource(t *testing.T) {
	f := newControllerFixture(t)
	installFixture(t, f, "icfg_1")

	provisioned := provisionFixture(t, f, "icfg_1", provisionBody)

	assert.NotEmpty(t, provisioned.ID)
	assert.Equal(t, models.ResourceStatusReady, provisioned.Status)
	assert.Equal(t, "free", provisioned.BillingPlan.ID)
	require.NotNil(t, provisioned.Metadata)
	assert.Equal(t, "web_test", provisioned.Metadata.WebsiteID)
	require.Len(t, provisioned.Secrets, 3)
	assert.Equal(t, 1, f.counters.websiteCreates)
}

func TestProvisionResource_UnknownPlan(t *testing.T) {
	f := newControllerFixture(t)
	installFixture(t, f, "icfg_1")

	body := `{"productId": "entrolytics", "name": "my-site", "billingPlanId": "enterprise"}`
	req := authedRequest(t, http.MethodPost, "/v1/installations/icfg_1/resources", "icfg_1", body)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProvisionResource_MissingFields(t *testing.T) {
	f := newControllerFixture(t)
	installFixture(t, f, "icfg_1")

	req := authedRequest(t, http.MethodPost, "/v1/installations/icfg_1/resources", "icfg_1", `{"name": "my-site"}`)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetResource(t *testing.T) {
	f := newControllerFixture(t)
	installFixture(t, f, "icfg_1")
	provisioned := provisionFixture(t, f, "icfg_1", provisionBody)

	req := authedRequest(t, http.MethodGet, "/v1/installations/icfg_1/resources/"+provisioned.ID, "icfg_1", "")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out models.Resource
	decodeJSONBody(t, resp, &out)
	assert.Equal(t, provisioned.ID, out.ID)
	assert.Equal(t, "my-site", out.Name)
}

func TestGetResource_Unknown(t *testing.T) {
	f := newControllerFixture(t)

	req := authedRequest(t, http.MethodGet, "/v1/installations/icfg_1/resources/res_ghost", "icfg_1", "")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteResource(t *testing.T) {
	f := newControllerFixture(t)
	installFixture(t, f, "icfg_1")
	provisioned := provisionFixture(t, f, "icfg_1", provisionBody)

	req := authedRequest(t, http.MethodDelete, "/v1/installations/icfg_1/resources/"+provisioned.ID, "icfg_1", "")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	req = authedRequest(t, http.MethodGet, "/v1/installations/icfg_1/resources/"+provisioned.ID, "icfg_1", "")
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListResources(t *testing.T) {
	f := newControllerFixture(t)
	installFixture(t, f, "icfg_1")

	first := provisionFixture(t, f, "icfg_1", `{"productId": "entrolytics", "name": "one", "billingPlanId": "free"}`)
	_ = provisionFixture(t, f, "icfg_1", `{"productId": "entrolytics", "name": "two", "billingPlanId": "free"}`)
	third := provisionFixture(t, f, "icfg_1", `{"productId": "entrolytics", "name": "three", "billingPlanId": "free"}`)

	req := authedRequest(t, http.MethodGet, "/v1/installations/icfg_1/resources", "icfg_1", "")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Resources []models.Resource `json:"resources"`
	}
	decodeJSONBody(t, resp, &out)
	require.Len(t, out.Resources, 3)
	assert.Equal(t, "three", out.Resources[0].Name)

	// Filtered listing keeps only the requested ids.
	target := "/v1/installations/icfg_1/resources?resourceIds=" + first.ID + "," + third.ID
	req = authedRequest(t, http.MethodGet, target, "icfg_1", "")
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out.Resources = nil
	decodeJSONBody(t, resp, &out)
	require.Len(t, out.Resources, 2)
	for _, r := range out.Resources {
		assert.NotEqual(t, "two", r.Name)
	}
}

package entrolytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/entrolytics/vercel-marketplace/internal/pkg/env"
)

const defaultAPIBaseURL = "https://ng.entrolytics.click"

// Client talks to the Entrolytics analytics backend with the integration
// level secret, not the per-installation Vercel token.
type Client struct {
	APIBaseURL        string
	IntegrationSecret string

	HTTPClient *http.Client
}

// DeploymentPayload is one deployment event pushed to a website's timeline.
type DeploymentPayload struct {
	Website   string `json:"website"`
	DeployID  string `json:"deployId"`
	GitSha    string `json:"gitSha,omitempty"`
	GitBranch string `json:"gitBranch,omitempty"`
	DeployURL string `json:"deployUrl,omitempty"`
	Source    string `json:"source"`
}

func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL:        strings.TrimRight(env.GetEnv("ENTROLYTICS_API_URL", defaultAPIBaseURL), "/"),
		IntegrationSecret: strings.TrimSpace(env.GetEnv("ENTROLYTICS_INTEGRATION_SECRET", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateWebsite registers a website and returns its id. The caller decides
// what to do on failure; provisioning falls back to a locally generated id.
func (c *Client) CreateWebsite(ctx context.Context, name, domain string) (string, error) {
	if domain == "" {
		domain = name
	}

	payload := map[string]any{
		"name":    name,
		"domain":  domain,
		"shareId": nil,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/api/websites", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.IntegrationSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to create website: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		ID        string `json:"id"`
		WebsiteID string `json:"websiteId"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.WebsiteID != "" {
		return out.WebsiteID, nil
	}
	return out.ID, nil
}

// TrackDeployment pushes a deployment record onto the website's timeline.
func (c *Client) TrackDeployment(ctx context.Context, websiteID string, payload DeploymentPayload) error {
	payload.Website = websiteID
	if payload.Source == "" {
		payload.Source = "vercel"
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/api/websites/"+websiteID+"/deployments", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.IntegrationSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to track deployment: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

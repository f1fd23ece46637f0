package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/entrolytics/vercel-marketplace/app/repository"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.vercel.com"

var envTargets = []string{"production", "preview", "development"}

// ErrCredentialMissing is returned when no access token is stored for the
// installation; no upstream call is attempted in that case.
var ErrCredentialMissing = errors.New("no access token stored for installation")

// Client calls the Vercel REST API on behalf of an installation. Every
// operation resolves the stored credential first; team-scoped credentials
// add the teamId query parameter.
type Client struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string

	HTTPClient *http.Client

	tokens repository.CredentialRepository
}

func NewClientFromEnv(tokens repository.CredentialRepository) *Client {
	return &Client{
		ClientID:     strings.TrimSpace(env.GetEnv("INTEGRATION_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("INTEGRATION_CLIENT_SECRET", "")),
		APIBaseURL:   strings.TrimRight(env.GetEnv("VERCEL_API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		tokens: tokens,
	}
}

func (c *Client) token(ctx context.Context, installationID string) (*models.TokenData, error) {
	token, err := c.tokens.Get(ctx, installationID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: %s", ErrCredentialMissing, installationID)
	}
	return token, nil
}

// endpoint builds an absolute API URL, appending teamId for team-scoped
// credentials.
func (c *Client) endpoint(path string, token *models.TokenData) string {
	u := c.APIBaseURL + path
	if token != nil && token.TeamID != nil && *token.TeamID != "" {
		q := url.Values{}
		q.Set("teamId", *token.TeamID)
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) doJSON(ctx context.Context, method, rawURL, accessToken string, payload any) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp, data, nil
}

// ListProjects returns the installation's projects. Listing is advisory
// (dashboard display), so upstream failures degrade to an empty slice.
func (c *Client) ListProjects(ctx context.Context, installationID string) ([]Project, error) {
	token, err := c.token(ctx, installationID)
	if err != nil {
		return nil, err
	}

	resp, data, err := c.doJSON(ctx, http.MethodGet, c.endpoint("/v9/projects", token), token.AccessToken, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Vercel API] Failed to list projects: status=%d body=%s", resp.StatusCode, string(data))
		return []Project{}, nil
	}

	var out struct {
		Projects []Project `json:"projects"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// GetAccountInfo queries team info for team-scoped installations and falls
// back to user info otherwise. Callers depend on this for identity, so a
// non-success user response is a hard failure.
func (c *Client) GetAccountInfo(ctx context.Context, installationID string) (*AccountInfo, error) {
	token, err := c.token(ctx, installationID)
	if err != nil {
		return nil, err
	}

	if token.TeamID != nil && *token.TeamID != "" {
		resp, data, err := c.doJSON(ctx, http.MethodGet, c.APIBaseURL+"/v2/teams/"+*token.TeamID, token.AccessToken, nil)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var info AccountInfo
			if err := json.Unmarshal(data, &info); err != nil {
				return nil, err
			}
			return &info, nil
		}
	}

	resp, data, err := c.doJSON(ctx, http.MethodGet, c.APIBaseURL+"/v2/user", token.AccessToken, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to get account info: status=%d", resp.StatusCode)
	}

	var info AccountInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UpsertEnvironmentVariables submits all variables as one batch write. Each
// variable is tagged encrypted and targets all three environments unless the
// caller overrides.
func (c *Client) UpsertEnvironmentVariables(ctx context.Context, installationID, projectID string, variables []EnvironmentVariable) (*EnvUpsertResult, error) {
	token, err := c.token(ctx, installationID)
	if err != nil {
		return nil, err
	}

	envVars := make([]EnvironmentVariable, len(variables))
	for i, v := range variables {
		v.Type = "encrypted"
		if len(v.Target) == 0 {
			v.Target = envTargets
		}
		envVars[i] = v
	}

	resp, data, err := c.doJSON(ctx, http.MethodPost, c.endpoint("/v10/projects/"+projectID+"/env", token), token.AccessToken, envVars)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Vercel API] Failed to create env vars: status=%d body=%s", resp.StatusCode, string(data))
		return nil, fmt.Errorf("failed to create environment variables: status=%d", resp.StatusCode)
	}

	var out struct {
		Created []json.RawMessage `json:"created"`
		Updated []json.RawMessage `json:"updated"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &EnvUpsertResult{Created: len(out.Created), Updated: len(out.Updated)}, nil
}

// ListEnvironmentVariables returns the project's env vars; failures degrade
// to an empty slice since listing only feeds best-effort cleanup.
func (c *Client) ListEnvironmentVariables(ctx context.Context, installationID, projectID string) ([]EnvListEntry, error) {
	token, err := c.token(ctx, installationID)
	if err != nil {
		return nil, err
	}

	resp, data, err := c.doJSON(ctx, http.MethodGet, c.endpoint("/v9/projects/"+projectID+"/env", token), token.AccessToken, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Vercel API] Failed to list env vars: status=%d body=%s", resp.StatusCode, string(data))
		return []EnvListEntry{}, nil
	}

	var out struct {
		Envs []EnvListEntry `json:"envs"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out.Envs, nil
}

// DeleteEnvironmentVariables removes the variables matching keys. Each
// deletion attempt is independent; one failing key must not block the rest,
// so individual errors are only logged.
func (c *Client) DeleteEnvironmentVariables(ctx context.Context, installationID, projectID string, keys []string) error {
	token, err := c.token(ctx, installationID)
	if err != nil {
		return err
	}

	envVars, err := c.ListEnvironmentVariables(ctx, installationID, projectID)
	if err != nil {
		return err
	}

	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}

	for _, envVar := range envVars {
		if _, ok := wanted[envVar.Key]; !ok {
			continue
		}
		resp, data, err := c.doJSON(ctx, http.MethodDelete, c.endpoint("/v9/projects/"+projectID+"/env/"+envVar.ID, token), token.AccessToken, nil)
		if err != nil {
			log.Printf("[Vercel API] Failed to delete env var %s: %v", envVar.Key, err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("[Vercel API] Failed to delete env var %s: status=%d body=%s", envVar.Key, resp.StatusCode, string(data))
		}
	}
	return nil
}

// ExchangeCode trades the OAuth callback code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*models.TokenData, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return nil, errors.New("INTEGRATION_CLIENT_ID/INTEGRATION_CLIENT_SECRET are not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}

	form := url.Values{}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("code", strings.TrimSpace(code))
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/v2/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token exchange failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var token models.TokenData
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, err
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return nil, errors.New("token exchange returned empty access_token")
	}
	return &token, nil
}

package partner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/entrolytics/vercel-marketplace/app/repository"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/entrolytics"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/vercel"
)

// Env var names injected into linked Vercel projects and returned as secrets.
const (
	EnvKeyWebsiteID = "NEXT_PUBLIC_ENTROLYTICS_NG_WEBSITE_ID"
	EnvKeyHost      = "NEXT_PUBLIC_ENTROLYTICS_HOST"
	EnvKeyEndpoint  = "NEXT_PUBLIC_ENTROLYTICS_ENDPOINT"

	sendEndpointPath = "/api/send-native"
)

var (
	// ErrNotFound covers absent and soft-deleted installations/resources.
	ErrNotFound = errors.New("not found")
	// ErrUnknownBillingPlan aborts provisioning before any state is written.
	ErrUnknownBillingPlan = errors.New("unknown billing plan")
)

// Service is the lifecycle manager: install, uninstall, resource
// provisioning/deprovisioning and the project lookups driven by webhooks.
// Both the synchronous API and the webhook pipeline converge here.
type Service struct {
	installations repository.InstallationRepository
	resources     repository.ResourceRepository
	credentials   repository.CredentialRepository
	vercel        *vercel.Client
	analytics     *entrolytics.Client
	nowFn         func() time.Time
}

type Dependencies struct {
	Installations repository.InstallationRepository
	Resources     repository.ResourceRepository
	Credentials   repository.CredentialRepository
	Vercel        *vercel.Client
	Analytics     *entrolytics.Client
}

// NewService creates a lifecycle service from injected dependencies.
func NewService(deps Dependencies) *Service {
	return &Service{
		installations: deps.Installations,
		resources:     deps.Resources,
		credentials:   deps.Credentials,
		vercel:        deps.Vercel,
		analytics:     deps.Analytics,
		nowFn:         time.Now,
	}
}

// NewServiceFromFactory creates a lifecycle service from the repository
// factory plus env-configured API clients.
func NewServiceFromFactory(f *repository.Factory) *Service {
	credentials := f.GetCredentialRepository()
	return NewService(Dependencies{
		Installations: f.GetInstallationRepository(),
		Resources:     f.GetResourceRepository(),
		Credentials:   credentials,
		Vercel:        vercel.NewClientFromEnv(credentials),
		Analytics:     entrolytics.NewClientFromEnv(),
	})
}

// Vercel exposes the upstream client for controllers that need account or
// project lookups alongside lifecycle state.
func (s *Service) Vercel() *vercel.Client {
	return s.vercel
}

// Install binds an installation: the credential embedded in the request is
// stored under the token key, then the record is written and indexed.
// Re-installing the same id overwrites the prior record.
func (s *Service) Install(ctx context.Context, installationID string, req *models.InstallIntegrationRequest, installationType string) error {
	token := &models.TokenData{
		AccessToken:    req.Credentials.AccessToken,
		TokenType:      req.Credentials.TokenType,
		InstallationID: installationID,
		UserID:         req.Credentials.UserID,
		TeamID:         req.Credentials.TeamID,
	}
	if err := s.credentials.Store(ctx, installationID, token); err != nil {
		return err
	}

	billingPlanID := req.BillingPlanID
	if billingPlanID == "" {
		billingPlanID = "free"
	}

	installation := &models.Installation{
		Credentials:      req.Credentials,
		AcceptedPolicies: req.AcceptedPolicies,
		BillingPlanID:    billingPlanID,
		Type:             installationType,
		CreatedAt:        s.nowFn().UnixMilli(),
	}
	return s.installations.Put(ctx, installationID, installation)
}

// GetInstallation returns the active installation and its billing plan
// re-tagged with installation scope. Deleted and absent installations both
// report ErrNotFound.
func (s *Service) GetInstallation(ctx context.Context, installationID string) (*models.Installation, *models.BillingPlan, error) {
	installation, err := s.installations.Get(ctx, installationID)
	if err != nil {
		return nil, nil, err
	}
	if installation == nil || installation.IsDeleted() {
		return nil, nil, fmt.Errorf("%w: installation %s", ErrNotFound, installationID)
	}

	plan, ok := PlanByID(installation.BillingPlanID)
	if ok {
		plan.Scope = models.PlanScopeInstallation
		return installation, plan, nil
	}
	return installation, nil, nil
}

// UninstallResult reports whether billing settled immediately: true when the
// plan never required a payment method.
type UninstallResult struct {
	Finalized bool `json:"finalized"`
}

// Uninstall transitions active → deleted. Already-deleted or unknown
// installations return (nil, nil) so repeated deliveries stay side-effect
// free. Credential cleanup is best-effort.
func (s *Service) Uninstall(ctx context.Context, installationID string) (*UninstallResult, error) {
	installation, err := s.installations.Get(ctx, installationID)
	if err != nil {
		return nil, err
	}
	if installation == nil || installation.IsDeleted() {
		return nil, nil
	}

	if err := s.credentials.Delete(ctx, installationID); err != nil {
		log.Printf("[Uninstall] Failed to delete access token: %v", err)
	} else {
		log.Printf("[Uninstall] Access token deleted for installation: %s", installationID)
	}

	now := s.nowFn().UnixMilli()
	installation.DeletedAt = &now
	if err := s.installations.MarkDeleted(ctx, installationID, installation); err != nil {
		return nil, err
	}

	plan, ok := PlanByID(installation.BillingPlanID)
	return &UninstallResult{Finalized: ok && !plan.PaymentMethodRequired}, nil
}

// ProvisionResource creates an Entrolytics website and stores the resource.
// Website creation failure falls back to a locally generated id so
// provisioning always yields a resource. Env-var injection into a linked
// project is a convenience sync: its failure is logged, never propagated.
func (s *Service) ProvisionResource(ctx context.Context, installationID string, req *models.ProvisionResourceRequest) (*models.ProvisionedResource, error) {
	plan, ok := PlanByID(req.BillingPlanID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBillingPlan, req.BillingPlanID)
	}

	var domain string
	if req.Metadata != nil {
		domain = req.Metadata.Domain
	}
	websiteID, err := s.analytics.CreateWebsite(ctx, req.Name, domain)
	if err != nil {
		log.Printf("[Resource] Error creating Entrolytics website: %v", err)
		websiteID = uuid.NewString()
	}

	metadata := &models.ResourceMetadata{WebsiteID: websiteID}
	if req.Metadata != nil {
		metadata.ProjectID = req.Metadata.ProjectID
		metadata.Domain = req.Metadata.Domain
	}

	resource := models.Resource{
		ID:          uuid.NewString(),
		Status:      models.ResourceStatusReady,
		Name:        req.Name,
		ProductID:   req.ProductID,
		BillingPlan: *plan,
		Metadata:    metadata,
	}
	if err := s.resources.Put(ctx, installationID, &resource); err != nil {
		return nil, err
	}

	secrets := s.secretsFor(websiteID)
	if metadata.ProjectID != "" {
		variables := make([]vercel.EnvironmentVariable, len(secrets))
		for i, secret := range secrets {
			variables[i] = vercel.EnvironmentVariable{Key: secret.Name, Value: secret.Value}
		}
		if _, err := s.vercel.UpsertEnvironmentVariables(ctx, installationID, metadata.ProjectID, variables); err != nil {
			log.Printf("[Resource] Failed to inject environment variables: %v", err)
		} else {
			log.Printf("[Resource] Environment variables injected for project: %s", metadata.ProjectID)
		}
	}

	return &models.ProvisionedResource{Resource: resource, Secrets: secrets}, nil
}

// secretsFor builds the three key/value pairs surfaced to the user. The same
// values drive env-var injection, so the response never depends on whether
// injection succeeded.
func (s *Service) secretsFor(websiteID string) []models.Secret {
	return []models.Secret{
		{Name: EnvKeyWebsiteID, Value: websiteID},
		{Name: EnvKeyHost, Value: s.analytics.APIBaseURL},
		{Name: EnvKeyEndpoint, Value: sendEndpointPath},
	}
}

// GetResource returns a single resource; (nil, nil) when absent.
func (s *Service) GetResource(ctx context.Context, installationID, resourceID string) (*models.Resource, error) {
	return s.resources.Get(ctx, installationID, resourceID)
}

// DeleteResource best-effort removes the injected env vars, then deletes the
// stored record and its index entries. Deleting a non-existent resource is a
// no-op.
func (s *Service) DeleteResource(ctx context.Context, installationID, resourceID string) error {
	resource, err := s.resources.Get(ctx, installationID, resourceID)
	if err != nil {
		return err
	}

	if resource != nil && resource.Metadata != nil && resource.Metadata.ProjectID != "" {
		keys := []string{EnvKeyWebsiteID, EnvKeyHost, EnvKeyEndpoint}
		if err := s.vercel.DeleteEnvironmentVariables(ctx, installationID, resource.Metadata.ProjectID, keys); err != nil {
			log.Printf("[Resource] Failed to remove environment variables: %v", err)
		} else {
			log.Printf("[Resource] Environment variables removed for project: %s", resource.Metadata.ProjectID)
		}
	}

	return s.resources.Delete(ctx, installationID, resourceID)
}

// ListResources returns all stored resources, optionally restricted to the
// given ids. Storage order (most recent first) is preserved.
func (s *Service) ListResources(ctx context.Context, installationID string, resourceIDs []string) ([]models.Resource, error) {
	resources, err := s.resources.List(ctx, installationID)
	if err != nil {
		return nil, err
	}
	if len(resourceIDs) == 0 {
		return resources, nil
	}

	wanted := make(map[string]struct{}, len(resourceIDs))
	for _, id := range resourceIDs {
		wanted[id] = struct{}{}
	}
	filtered := make([]models.Resource, 0, len(resources))
	for _, resource := range resources {
		if _, ok := wanted[resource.ID]; ok {
			filtered = append(filtered, resource)
		}
	}
	return filtered, nil
}

// InstallationConfig is what deployment tracking needs for one project.
type InstallationConfig struct {
	WebsiteID string
	APIKey    string
	Host      string
}

// InstallationConfigForProject resolves which website tracks a project. The
// project secondary index answers directly; resources written before the
// index existed are found by the original scan over all installations.
func (s *Service) InstallationConfigForProject(ctx context.Context, projectID string) (*InstallationConfig, error) {
	if projectID == "" {
		return nil, nil
	}

	if installationID, err := s.resources.InstallationIDForProject(ctx, projectID); err != nil {
		return nil, err
	} else if installationID != "" {
		config, err := s.configFromResources(ctx, installationID, projectID)
		if err != nil || config != nil {
			return config, err
		}
	}

	installationIDs, err := s.installations.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, installationID := range installationIDs {
		config, err := s.configFromResources(ctx, installationID, projectID)
		if err != nil {
			return nil, err
		}
		if config != nil {
			return config, nil
		}
	}
	return nil, nil
}

// TrackDeployment resolves which website tracks the project and forwards the
// deployment to the analytics backend. Unlinked projects are a silent no-op.
func (s *Service) TrackDeployment(ctx context.Context, projectID string, payload entrolytics.DeploymentPayload) error {
	config, err := s.InstallationConfigForProject(ctx, projectID)
	if err != nil {
		return err
	}
	if config == nil {
		return nil
	}
	return s.analytics.TrackDeployment(ctx, config.WebsiteID, payload)
}

// StoreCredential persists an access token obtained outside the install flow,
// such as the OAuth callback exchange.
func (s *Service) StoreCredential(ctx context.Context, token *models.TokenData) error {
	if token == nil || token.InstallationID == "" {
		return errors.New("credential has no installation id")
	}
	return s.credentials.Store(ctx, token.InstallationID, token)
}

func (s *Service) configFromResources(ctx context.Context, installationID, projectID string) (*InstallationConfig, error) {
	resources, err := s.resources.List(ctx, installationID)
	if err != nil {
		return nil, err
	}
	for _, resource := range resources {
		if resource.Metadata != nil && resource.Metadata.ProjectID == projectID {
			return &InstallationConfig{
				WebsiteID: resource.Metadata.WebsiteID,
				APIKey:    s.analytics.IntegrationSecret,
				Host:      s.analytics.APIBaseURL,
			}, nil
		}
	}
	return nil, nil
}

// Configuration is one entry of the integration-configurations listing.
type Configuration struct {
	ID            string               `json:"id"`
	OwnerID       string               `json:"ownerId,omitempty"`
	TeamID        *string              `json:"teamId,omitempty"`
	Type          string               `json:"type"`
	BillingPlanID string               `json:"billingPlanId"`
	Account       ConfigurationAccount `json:"account"`
}

type ConfigurationAccount struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Configurations enumerates the caller's active installations with upstream
// account info attached. Per-installation lookup failures are logged and the
// entry skipped; one broken credential must not empty the whole listing.
func (s *Service) Configurations(ctx context.Context, userID string, teamID string) ([]Configuration, error) {
	installationIDs, err := s.installations.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	configurations := make([]Configuration, 0, len(installationIDs))
	for _, installationID := range installationIDs {
		installation, err := s.installations.Get(ctx, installationID)
		if err != nil {
			return nil, err
		}
		if installation == nil || installation.IsDeleted() {
			continue
		}

		installationTeamID := ""
		if installation.Credentials.TeamID != nil {
			installationTeamID = *installation.Credentials.TeamID
		}
		if installation.Credentials.UserID != userID && installationTeamID != teamID {
			continue
		}

		account, err := s.vercel.GetAccountInfo(ctx, installationID)
		if err != nil {
			log.Printf("[Configurations] Failed to get account info for %s: %v", installationID, err)
			continue
		}

		configurations = append(configurations, Configuration{
			ID:            installationID,
			OwnerID:       installation.Credentials.UserID,
			TeamID:        installation.Credentials.TeamID,
			Type:          installation.Type,
			BillingPlanID: installation.BillingPlanID,
			Account: ConfigurationAccount{
				ID:   account.ID,
				Name: account.Name,
			},
		})
	}
	return configurations, nil
}

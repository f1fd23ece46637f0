package repository

import (
	"context"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/redis/go-redis/v9"
)

// CredentialRepository stores the upstream access token per installation.
// Get returns (nil, nil) when no token is stored; Delete is idempotent.
type CredentialRepository interface {
	Store(ctx context.Context, installationID string, token *models.TokenData) error
	Get(ctx context.Context, installationID string) (*models.TokenData, error)
	Delete(ctx context.Context, installationID string) error
}

// InstallationRepository keeps the installation records plus the global
// "installations" index (ordered, duplicate-free, most-recent-first).
type InstallationRepository interface {
	// Put writes the record and re-pushes the id to the front of the index.
	Put(ctx context.Context, installationID string, installation *models.Installation) error
	// Get returns the raw record regardless of deletion state; (nil, nil)
	// when the key is absent. Callers must check DeletedAt themselves.
	Get(ctx context.Context, installationID string) (*models.Installation, error)
	// MarkDeleted overwrites the record (DeletedAt must be set by the
	// caller) and removes the id from the index.
	MarkDeleted(ctx context.Context, installationID string, installation *models.Installation) error
	ListIDs(ctx context.Context) ([]string, error)
}

// ResourceRepository keeps resources keyed by (installationId, resourceId)
// with a per-installation index, plus the projectId secondary index used for
// deployment tracking lookups.
type ResourceRepository interface {
	Put(ctx context.Context, installationID string, resource *models.Resource) error
	Get(ctx context.Context, installationID, resourceID string) (*models.Resource, error)
	// Delete removes the record, its index entry and any project index
	// entry pointing at it. Deleting an absent resource is a no-op.
	Delete(ctx context.Context, installationID, resourceID string) error
	// List resolves every id in the index, silently dropping ids whose
	// record is gone (index and record may diverge between writes).
	List(ctx context.Context, installationID string) ([]models.Resource, error)
	// InstallationIDForProject reads the project secondary index;
	// ("", nil) when no resource claims the project.
	InstallationIDForProject(ctx context.Context, projectID string) (string, error)
}

// WebhookEventRepository persists the bounded webhook audit trail.
type WebhookEventRepository interface {
	Store(ctx context.Context, event *models.WebhookEnvelope) error
	Recent(ctx context.Context, limit int64) ([]models.WebhookEnvelope, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Credentials   CredentialRepository
	Installations InstallationRepository
	Resources     ResourceRepository
	WebhookEvents WebhookEventRepository
}

// NewRepositories creates all repositories over one Redis client.
func NewRepositories(client *redis.Client) *Repositories {
	return &Repositories{
		Credentials:   NewCredentialRepository(client),
		Installations: NewInstallationRepository(client),
		Resources:     NewResourceRepository(client),
		WebhookEvents: NewWebhookEventRepository(client),
	}
}

package repository

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	client *redis.Client
	repos  *Repositories
	once   sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(client *redis.Client) *Factory {
	return &Factory{
		client: client,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.client)
	})
	return f.repos
}

// GetCredentialRepository returns the credential repository instance
func (f *Factory) GetCredentialRepository() CredentialRepository {
	return f.GetRepositories().Credentials
}

// GetInstallationRepository returns the installation repository instance
func (f *Factory) GetInstallationRepository() InstallationRepository {
	return f.GetRepositories().Installations
}

// GetResourceRepository returns the resource repository instance
func (f *Factory) GetResourceRepository() ResourceRepository {
	return f.GetRepositories().Resources
}

// GetWebhookEventRepository returns the webhook event repository instance
func (f *Factory) GetWebhookEventRepository() WebhookEventRepository {
	return f.GetRepositories().WebhookEvents
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(client *redis.Client) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(client)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}

package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/redis/go-redis/v9"
)

type resourceRepository struct {
	client *redis.Client
}

// NewResourceRepository creates a Redis-backed resource repository.
func NewResourceRepository(client *redis.Client) ResourceRepository {
	return &resourceRepository{client: client}
}

func (r *resourceRepository) Put(ctx context.Context, installationID string, resource *models.Resource) error {
	data, err := json.Marshal(resource)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, resourceKey(installationID, resource.ID), data, 0)
	pipe.LRem(ctx, resourceIndexKey(installationID), 0, resource.ID)
	pipe.LPush(ctx, resourceIndexKey(installationID), resource.ID)
	if resource.Metadata != nil && resource.Metadata.ProjectID != "" {
		// Secondary index maintained at write time so deployment webhooks
		// resolve the owning installation without scanning.
		pipe.Set(ctx, projectIndexKey(resource.Metadata.ProjectID), installationID, 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *resourceRepository) Get(ctx context.Context, installationID, resourceID string) (*models.Resource, error) {
	data, err := r.client.Get(ctx, resourceKey(installationID, resourceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resource models.Resource
	if err := json.Unmarshal(data, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) Delete(ctx context.Context, installationID, resourceID string) error {
	resource, err := r.Get(ctx, installationID, resourceID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, resourceKey(installationID, resourceID))
	pipe.LRem(ctx, resourceIndexKey(installationID), 0, resourceID)
	if resource != nil && resource.Metadata != nil && resource.Metadata.ProjectID != "" {
		pipe.Del(ctx, projectIndexKey(resource.Metadata.ProjectID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *resourceRepository) List(ctx context.Context, installationID string) ([]models.Resource, error) {
	ids, err := r.client.LRange(ctx, resourceIndexKey(installationID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	resources := make([]models.Resource, 0, len(ids))
	for _, id := range ids {
		resource, err := r.Get(ctx, installationID, id)
		if err != nil {
			return nil, err
		}
		if resource == nil {
			// Index and record can diverge between the two writes; a
			// dangling id must not fail the whole listing.
			continue
		}
		resources = append(resources, *resource)
	}
	return resources, nil
}

func (r *resourceRepository) InstallationIDForProject(ctx context.Context, projectID string) (string, error) {
	id, err := r.client.Get(ctx, projectIndexKey(projectID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

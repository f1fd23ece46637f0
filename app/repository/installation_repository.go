package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/redis/go-redis/v9"
)

type installationRepository struct {
	client *redis.Client
}

// NewInstallationRepository creates a Redis-backed installation repository.
func NewInstallationRepository(client *redis.Client) InstallationRepository {
	return &installationRepository{client: client}
}

func (r *installationRepository) Put(ctx context.Context, installationID string, installation *models.Installation) error {
	data, err := json.Marshal(installation)
	if err != nil {
		return err
	}

	// LREM before LPUSH keeps the index duplicate-free and moves the id to
	// the front on re-install.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, installationKey(installationID), data, 0)
	pipe.LRem(ctx, installationsIndexKey, 0, installationID)
	pipe.LPush(ctx, installationsIndexKey, installationID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *installationRepository) Get(ctx context.Context, installationID string) (*models.Installation, error) {
	data, err := r.client.Get(ctx, installationKey(installationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var installation models.Installation
	if err := json.Unmarshal(data, &installation); err != nil {
		return nil, err
	}
	return &installation, nil
}

func (r *installationRepository) MarkDeleted(ctx context.Context, installationID string, installation *models.Installation) error {
	data, err := json.Marshal(installation)
	if err != nil {
		return err
	}

	// The record is overwritten, not removed: it stays readable as an audit
	// trail while the index no longer lists it.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, installationKey(installationID), data, 0)
	pipe.LRem(ctx, installationsIndexKey, 0, installationID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *installationRepository) ListIDs(ctx context.Context) ([]string, error) {
	return r.client.LRange(ctx, installationsIndexKey, 0, -1).Result()
}

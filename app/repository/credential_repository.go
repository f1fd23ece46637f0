package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/redis/go-redis/v9"
)

type credentialRepository struct {
	client *redis.Client
}

// NewCredentialRepository creates a Redis-backed credential repository.
func NewCredentialRepository(client *redis.Client) CredentialRepository {
	return &credentialRepository{client: client}
}

func (r *credentialRepository) Store(ctx context.Context, installationID string, token *models.TokenData) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, credentialKey(installationID), data, 0).Err()
}

func (r *credentialRepository) Get(ctx context.Context, installationID string) (*models.TokenData, error) {
	data, err := r.client.Get(ctx, credentialKey(installationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var token models.TokenData
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *credentialRepository) Delete(ctx context.Context, installationID string) error {
	return r.client.Del(ctx, credentialKey(installationID)).Err()
}

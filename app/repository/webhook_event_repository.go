package repository

import (
	"context"
	"encoding/json"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/redis/go-redis/v9"
)

type webhookEventRepository struct {
	client *redis.Client
}

// NewWebhookEventRepository creates the bounded webhook audit trail.
func NewWebhookEventRepository(client *redis.Client) WebhookEventRepository {
	return &webhookEventRepository{client: client}
}

func (r *webhookEventRepository) Store(ctx context.Context, event *models.WebhookEnvelope) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, webhookEventsKey, data)
	pipe.LTrim(ctx, webhookEventsKey, 0, webhookEventsMax-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *webhookEventRepository) Recent(ctx context.Context, limit int64) ([]models.WebhookEnvelope, error) {
	if limit <= 0 || limit > webhookEventsMax {
		limit = webhookEventsMax
	}
	raw, err := r.client.LRange(ctx, webhookEventsKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]models.WebhookEnvelope, 0, len(raw))
	for _, item := range raw {
		var event models.WebhookEnvelope
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

package models

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// WebhookEnvelope is the minimal shape every Vercel webhook delivery must
// satisfy. Payload stays opaque here; typed decoding lives in the webhook
// package. Unknown event types are persisted in exactly this form.
type WebhookEnvelope struct {
	ID        string          `json:"id" validate:"required"`
	Type      string          `json:"type" validate:"required"`
	CreatedAt int64           `json:"createdAt" validate:"required"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (e *WebhookEnvelope) Validate() error {
	v := validator.New()

	return v.Struct(e)
}

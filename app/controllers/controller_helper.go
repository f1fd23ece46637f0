package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/entrolytics/vercel-marketplace/app/repository"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/partner"
)

var (
	sharedMu          sync.Mutex
	partnerService    *partner.Service
	webhookEventsRepo repository.WebhookEventRepository
)

func getService() *partner.Service {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if partnerService == nil {
		partnerService = partner.NewServiceFromFactory(repository.GetGlobalFactory())
	}
	return partnerService
}

func getWebhookEvents() repository.WebhookEventRepository {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if webhookEventsRepo == nil {
		webhookEventsRepo = repository.GetGlobalFactory().GetWebhookEventRepository()
	}
	return webhookEventsRepo
}

// SetPartnerService replaces the shared lifecycle service. Used by tests.
func SetPartnerService(s *partner.Service) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	partnerService = s
}

// SetWebhookEventRepository replaces the shared audit repository. Used by tests.
func SetWebhookEventRepository(r repository.WebhookEventRepository) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	webhookEventsRepo = r
}

// requestContext bounds handler work so a stalled upstream cannot hold the
// connection open indefinitely.
func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), 15*time.Second)
}

type validatable interface {
	Validate() error
}

// parseBody decodes and validates a JSON request body. On failure the 400
// response is already written and false is returned.
func parseBody(c *fiber.Ctx, out validatable) bool {
	if err := c.BodyParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
		return false
	}
	if err := out.Validate(); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
		return false
	}
	return true
}

package controllers

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/entrolytics/vercel-marketplace/internal/pkg/entrolytics"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/env"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/webhook"
)

// HandleWebhook ingests Vercel webhook deliveries. The signature gates
// everything; once it checks out the endpoint always answers 200 so Vercel
// does not retry deliveries whose processing failed on our side.
func HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	secret := strings.TrimSpace(env.GetEnv("INTEGRATION_CLIENT_SECRET", ""))

	if !webhook.VerifySignature(rawBody, c.Get("x-vercel-signature"), secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid signature"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	envelope, err := webhook.ParseEnvelope(rawBody)
	if err != nil {
		log.Printf("[Webhook] Discarding malformed delivery: %v", err)
		return c.SendStatus(fiber.StatusOK)
	}

	if err := getWebhookEvents().Store(ctx, envelope); err != nil {
		log.Printf("[Webhook] Failed to record event %s: %v", envelope.ID, err)
	}

	event, err := webhook.ParseEvent(rawBody)
	if err != nil {
		log.Printf("[Webhook] Event %s (%s) not dispatched: %v", envelope.ID, envelope.Type, err)
		return c.SendStatus(fiber.StatusOK)
	}

	dispatchWebhookEvent(ctx, event)
	return c.SendStatus(fiber.StatusOK)
}

// dispatchWebhookEvent routes a recognized event. Handler failures are logged
// only; the delivery was already acknowledged.
func dispatchWebhookEvent(ctx context.Context, event *webhook.Event) {
	switch event.Type() {
	case webhook.EventConfigurationRemoved:
		installationID := event.Configuration.Configuration.ID
		result, err := getService().Uninstall(ctx, installationID)
		if err != nil {
			log.Printf("[Webhook] Failed to uninstall %s: %v", installationID, err)
			return
		}
		if result == nil {
			log.Printf("[Webhook] Installation %s already removed", installationID)
			return
		}
		log.Printf("[Webhook] Installation %s removed (finalized=%t)", installationID, result.Finalized)

	case webhook.EventDeploymentCreated:
		projectID := ""
		if event.Deployment.Project != nil {
			projectID = event.Deployment.Project.ID
		}
		if projectID == "" {
			log.Printf("[Webhook] Deployment %s carries no project, skipping", event.Deployment.Deployment.ID)
			return
		}
		payload := entrolytics.DeploymentPayload{
			DeployID:  event.Deployment.Deployment.ID,
			GitSha:    event.Deployment.Deployment.Meta.GithubCommitSha,
			GitBranch: event.Deployment.Deployment.Meta.GithubCommitRef,
			DeployURL: event.Deployment.Deployment.URL,
		}
		if err := getService().TrackDeployment(ctx, projectID, payload); err != nil {
			log.Printf("[Webhook] Failed to track deployment %s: %v", event.Deployment.Deployment.ID, err)
		}

	case webhook.EventDeploymentSucceeded:
		log.Printf("[Webhook] Deployment succeeded: %s", event.Deployment.Deployment.ID)

	case webhook.EventProjectCreated:
		log.Printf("[Webhook] Project created: %s", event.Project.Project.ID)

	case webhook.EventProjectRemoved:
		log.Printf("[Webhook] Project removed: %s", event.Project.Project.ID)

	case webhook.EventScopeChangeConfirmed:
		log.Printf("[Webhook] Scope change confirmed for installation %s", event.Configuration.Configuration.ID)
	}
}

package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/entrolytics/vercel-marketplace/internal/pkg/installationctx"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/partner"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/vercel"
)

// HandleListConfigurations enumerates the caller's installations with
// upstream account info attached.
func HandleListConfigurations(c *fiber.Ctx) error {
	claims := installationctx.GetClaims(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	configurations, err := getService().Configurations(ctx, claims.UserID, claims.TeamID)
	if err != nil {
		log.Printf("[Configurations] Failed to list configurations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list configurations"})
	}

	return c.JSON(fiber.Map{
		"configurations": configurations,
		"total":          len(configurations),
	})
}

// HandleGetConfiguration returns one installation with account identity and
// the linked projects. Account info is required; the project listing is
// advisory and degrades to empty.
func HandleGetConfiguration(c *fiber.Ctx) error {
	installationID := c.Params("configurationId")

	ctx, cancel := requestContext(c)
	defer cancel()

	svc := getService()
	installation, _, err := svc.GetInstallation(ctx, installationID)
	if err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Configuration not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load configuration"})
	}

	account, err := svc.Vercel().GetAccountInfo(ctx, installationID)
	if err != nil {
		log.Printf("[Configurations] Failed to get account info for %s: %v", installationID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load account info"})
	}

	projects, err := svc.Vercel().ListProjects(ctx, installationID)
	if err != nil {
		log.Printf("[Configurations] Failed to list projects for %s: %v", installationID, err)
		projects = []vercel.Project{}
	}

	return c.JSON(fiber.Map{
		"id":            installationID,
		"type":          installation.Type,
		"billingPlanId": installation.BillingPlanID,
		"account":       account,
		"projects":      projects,
	})
}

// HandleUpdateConfiguration acknowledges a configuration update. Billing plan
// changes arrive through dedicated lifecycle calls, so this is a no-op ack.
func HandleUpdateConfiguration(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"id": c.Params("configurationId")})
}

// HandleDeleteConfiguration uninstalls via the configuration surface. Unlike
// the installation route this reports 404 for unknown ids so dashboard
// deletions surface stale state.
func HandleDeleteConfiguration(c *fiber.Ctx) error {
	installationID := c.Params("configurationId")

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := getService().Uninstall(ctx, installationID)
	if err != nil {
		log.Printf("[Configurations] Failed to delete configuration %s: %v", installationID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete configuration"})
	}
	if result == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Configuration not found"})
	}

	return c.JSON(fiber.Map{
		"id":        installationID,
		"deleted":   true,
		"finalized": result.Finalized,
	})
}

package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/installationctx"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/partner"
)

// HandleInstallIntegration binds an installation. Repeating the call for the
// same id overwrites the prior record, so Vercel retries are safe.
func HandleInstallIntegration(c *fiber.Ctx) error {
	installationID := c.Params("installationId")
	claims := installationctx.GetClaims(c)
	if claims.InstallationID != installationID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Token does not match installation"})
	}

	req := new(models.InstallIntegrationRequest)
	if !parseBody(c, req) {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := getService().Install(ctx, installationID, req, models.InstallationTypeMarketplace); err != nil {
		log.Printf("[Install] Failed to store installation %s: %v", installationID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store installation"})
	}

	log.Printf("[Install] Installation stored: %s", installationID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{})
}

// HandleGetInstallation returns the active installation's billing plan.
func HandleGetInstallation(c *fiber.Ctx) error {
	installationID := c.Params("installationId")

	ctx, cancel := requestContext(c)
	defer cancel()

	_, plan, err := getService().GetInstallation(ctx, installationID)
	if err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Installation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load installation"})
	}

	response := struct {
		BillingPlan *models.BillingPlan `json:"billingPlan,omitempty"`
	}{BillingPlan: plan}
	return c.JSON(response)
}

// HandleUninstallIntegration deletes an installation. Absent or already
// deleted installations answer 204 so retried deliveries converge.
func HandleUninstallIntegration(c *fiber.Ctx) error {
	installationID := c.Params("installationId")

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := getService().Uninstall(ctx, installationID)
	if err != nil {
		log.Printf("[Uninstall] Failed to uninstall %s: %v", installationID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to uninstall"})
	}
	if result == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(result)
}

// HandleListBillingPlans returns the fixed plan catalog for a product.
func HandleListBillingPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": partner.Plans()})
}

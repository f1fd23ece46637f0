package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/entrolytics/vercel-marketplace/app/models"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/partner"
)

// HandleProvisionResource creates a resource under the installation.
func HandleProvisionResource(c *fiber.Ctx) error {
	installationID := c.Params("installationId")

	req := new(models.ProvisionResourceRequest)
	if !parseBody(c, req) {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	provisioned, err := getService().ProvisionResource(ctx, installationID, req)
	if err != nil {
		if errors.Is(err, partner.ErrUnknownBillingPlan) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Unknown billing plan: " + req.BillingPlanID})
		}
		log.Printf("[Resource] Failed to provision resource for %s: %v", installationID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to provision resource"})
	}

	log.Printf("[Resource] Resource provisioned: %s (installation %s)", provisioned.ID, installationID)
	return c.Status(fiber.StatusCreated).JSON(provisioned)
}

// HandleGetResource returns a single resource.
func HandleGetResource(c *fiber.Ctx) error {
	installationID := c.Params("installationId")
	resourceID := c.Params("resourceId")

	ctx, cancel := requestContext(c)
	defer cancel()

	resource, err := getService().GetResource(ctx, installationID, resourceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load resource"})
	}
	if resource == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Resource not found"})
	}
	return c.JSON(resource)
}

// HandleDeleteResource removes a resource. Unknown ids still answer 204.
func HandleDeleteResource(c *fiber.Ctx) error {
	installationID := c.Params("installationId")
	resourceID := c.Params("resourceId")

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := getService().DeleteResource(ctx, installationID, resourceID); err != nil {
		log.Printf("[Resource] Failed to delete resource %s: %v", resourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete resource"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListResources returns the installation's resources, optionally
// filtered by the resourceIds query parameter (comma separated).
func HandleListResources(c *fiber.Ctx) error {
	installationID := c.Params("installationId")

	var resourceIDs []string
	if raw := strings.TrimSpace(c.Query("resourceIds")); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				resourceIDs = append(resourceIDs, id)
			}
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resources, err := getService().ListResources(ctx, installationID, resourceIDs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list resources"})
	}
	return c.JSON(fiber.Map{"resources": resources})
}

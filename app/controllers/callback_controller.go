package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const dashboardURL = "https://vercel.com/dashboard"

// HandleCallback finishes the OAuth flow: it exchanges the code for an access
// token, stores the credential when the token names an installation, and
// sends the user back to Vercel.
func HandleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing code parameter"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	svc := getService()
	token, err := svc.Vercel().ExchangeCode(ctx, code, requestBaseURL(c)+"/callback")
	if err != nil {
		log.Printf("[Callback] Token exchange failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "bad_gateway", "message": "Token exchange failed"})
	}

	if token.InstallationID != "" {
		if err := svc.StoreCredential(ctx, token); err != nil {
			log.Printf("[Callback] Failed to store credential for %s: %v", token.InstallationID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store credential"})
		}
		log.Printf("[Callback] Credential stored for installation: %s", token.InstallationID)
	}

	next := c.Query("next")
	if next == "" {
		next = dashboardURL
		if configurationID := c.Query("configurationId"); configurationID != "" {
			next += "?configurationId=" + configurationID
		}
	}
	return c.Redirect(next, fiber.StatusFound)
}

// requestBaseURL reconstructs the externally visible origin of the request.
// Local development runs plain HTTP; everything else sits behind TLS.
func requestBaseURL(c *fiber.Ctx) string {
	host := c.Hostname()
	scheme := "https"
	if strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") {
		scheme = "http"
	}
	return scheme + "://" + host
}

package installationctx

import "github.com/gofiber/fiber/v2"

// Claims is the verified identity of an integration request. Every
// authenticated route can rely on InstallationID being non-empty; UserID and
// TeamID are only present for user-scoped respectively team-scoped tokens.
type Claims struct {
	InstallationID string `json:"installation_id"`
	UserID         string `json:"user_id,omitempty"`
	TeamID         string `json:"team_id,omitempty"`
}

// GetClaims retrieves the verified claims from the fiber context.
// Returns an empty Claims if the auth middleware did not run.
func GetClaims(c *fiber.Ctx) Claims {
	if v := c.Locals(KeyClaims); v != nil {
		if claims, ok := v.(Claims); ok {
			return claims
		}
	}
	return Claims{}
}

// GetInstallationID returns the authenticated installation id, or empty string.
func GetInstallationID(c *fiber.Ctx) string {
	return GetClaims(c).InstallationID
}

package middleware

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/entrolytics/vercel-marketplace/internal/pkg/env"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/installationctx"
)

const vercelTokenIssuer = "https://vercel.com"

// RequireIntegrationAuth verifies the Vercel-issued bearer token (HS256,
// keyed with the integration client secret) and stores the resulting claims
// in Locals for downstream handlers.
func RequireIntegrationAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		secret := strings.TrimSpace(env.GetEnv("INTEGRATION_CLIENT_SECRET", ""))
		if secret == "" {
			log.Print("[Auth] INTEGRATION_CLIENT_SECRET is not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification unavailable"})
		}

		claims, err := verifyIntegrationToken(tokenString, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid token"})
		}

		c.Locals(installationctx.KeyClaims, claims)
		c.Locals(installationctx.KeyInstallationID, claims.InstallationID)

		return c.Next()
	}
}

func verifyIntegrationToken(tokenString, secret string) (installationctx.Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(vercelTokenIssuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return installationctx.Claims{}, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return installationctx.Claims{}, jwt.ErrTokenInvalidClaims
	}

	installationID, _ := mapClaims["installation_id"].(string)
	if installationID == "" {
		return installationctx.Claims{}, fmt.Errorf("%w: installation_id missing", jwt.ErrTokenInvalidClaims)
	}
	userID, _ := mapClaims["user_id"].(string)
	teamID, _ := mapClaims["team_id"].(string)

	return installationctx.Claims{
		InstallationID: installationID,
		UserID:         userID,
		TeamID:         teamID,
	}, nil
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

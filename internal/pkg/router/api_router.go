package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/entrolytics/vercel-marketplace/app/controllers"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/middleware"
	"github.com/entrolytics/vercel-marketplace/internal/pkg/ratelimit"
)

type ApiRouter struct {
}

// InstallRouter registers the authenticated marketplace surface. Every route
// under /v1 requires a Vercel-signed bearer token.
func (h ApiRouter) InstallRouter(app *fiber.App) {
	v1 := app.Group("/v1",
		limiter.New(limiter.Config{
			Max:        120,
			Expiration: time.Minute,
			Storage:    ratelimit.NewStorage(),
		}),
		middleware.RequireIntegrationAuth(),
	)

	v1.Put("/installations/:installationId", controllers.HandleInstallIntegration)
	v1.Get("/installations/:installationId", controllers.HandleGetInstallation)
	v1.Delete("/installations/:installationId", controllers.HandleUninstallIntegration)

	v1.Get("/installations/:installationId/resources", controllers.HandleListResources)
	v1.Post("/installations/:installationId/resources", controllers.HandleProvisionResource)
	v1.Get("/installations/:installationId/resources/:resourceId", controllers.HandleGetResource)
	v1.Delete("/installations/:installationId/resources/:resourceId", controllers.HandleDeleteResource)

	v1.Get("/products/:productId/plans", controllers.HandleListBillingPlans)

	v1.Get("/configurations", controllers.HandleListConfigurations)
	v1.Get("/configurations/:configurationId", controllers.HandleGetConfiguration)
	v1.Put("/configurations/:configurationId", controllers.HandleUpdateConfiguration)
	v1.Delete("/configurations/:configurationId", controllers.HandleDeleteConfiguration)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

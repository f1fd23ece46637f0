package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/entrolytics/vercel-marketplace/app/controllers"
)

type HttpRouter struct {
}

// InstallRouter registers the public surface: webhook ingestion (guarded by
// its HMAC signature, not a bearer token) and the OAuth callback.
func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/webhook", controllers.HandleWebhook)
	app.Get("/callback", controllers.HandleCallback)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

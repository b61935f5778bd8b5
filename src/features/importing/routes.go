package importing

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the importing feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	imports := app.Group("/import")
	imports.Post("/", handler.ImportFiles)
	imports.Get("/watcher", handler.GetWatcherStatus)
	imports.Post("/watcher/toggle", handler.ToggleWatcher)
}

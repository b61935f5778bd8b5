package playback

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the playback routes
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	playback := app.Group("/playback")
	playback.Get("/status", handler.GetStatus)
	playback.Post("/play", handler.Play)
	playback.Post("/toggle", handler.PlayPause)
	playback.Post("/skip", handler.Skip)
	playback.Post("/back", handler.Back)
	playback.Post("/stop", handler.Stop)
	playback.Post("/seek", handler.Seek)
	playback.Post("/shuffle", handler.ToggleShuffle)
	playback.Post("/repeat", handler.SetRepeat)
}

package library

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the library feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	library := app.Group("/library")
	library.Get("/stats", handler.GetStats)
	library.Get("/playlists", handler.GetPlaylists)
	library.Post("/playlists", handler.CreatePlaylist)
	library.Get("/playlists/:id", handler.GetPlaylist)
	library.Put("/playlists/:id", handler.UpdatePlaylist)
	library.Delete("/playlists/:id", handler.DeletePlaylist)
	library.Get("/playlists/:id/songs", handler.GetSongs)
	library.Post("/playlists/:id/reorder", handler.ReorderSongs)
	library.Get("/songs/:id", handler.GetSong)
	library.Put("/songs/:id", handler.UpdateSong)
	library.Delete("/songs/:id", handler.DeleteSong)
}

package importing

import (
	"errors"
	"log/slog"

	"vaulted/src/music"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the importing feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the importing feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, music.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, music.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, music.ErrUnreadable):
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

type importRequest struct {
	Paths      []string `json:"paths"`
	PlaylistID int64    `json:"playlistId"`
}

// ImportFiles imports a batch of audio files from local paths into a
// playlist. The whole batch commits or none of it does.
func (h *Handler) ImportFiles(c *fiber.Ctx) error {
	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.Paths) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no paths given"})
	}
	slog.Debug("ImportFiles handler called", "count", len(req.Paths), "playlistID", req.PlaylistID)

	songs, err := h.service.ImportFiles(c.Context(), req.Paths, req.PlaylistID)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imported": len(songs), "songs": songs})
}

// ToggleWatcher starts the drop folder watcher when stopped and stops it
// when running.
func (h *Handler) ToggleWatcher(c *fiber.Ctx) error {
	if h.service.WatcherRunning() {
		h.service.StopWatcher()
	} else if err := h.service.StartWatcher(); err != nil {
		slog.Error("Failed to start watcher", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"running": h.service.WatcherRunning()})
}

// GetWatcherStatus reports whether the drop folder watcher is running.
func (h *Handler) GetWatcherStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"running": h.service.WatcherRunning()})
}

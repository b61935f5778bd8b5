package playback

import (
	"errors"
	"log/slog"

	"vaulted/src/music"

	"github.com/gofiber/fiber/v2"
)

// Handler handles playback requests
type Handler struct {
	service *Service
}

// NewHandler creates a new playback handler
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
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

type playRequest struct {
	PlaylistID int64 `json:"playlistId"`
	SongID     int64 `json:"songId"`
}

type seekRequest struct {
	Seconds float64 `json:"seconds"`
}

type repeatRequest struct {
	Mode RepeatMode `json:"mode"`
}

// Play loads a playlist into the session and starts the given song.
func (h *Handler) Play(c *fiber.Ctx) error {
	var req playRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	slog.Debug("Play handler called", "playlistID", req.PlaylistID, "songID", req.SongID)
	if err := h.service.PlaySong(c.Context(), req.PlaylistID, req.SongID); err != nil {
		return sendError(c, err)
	}
	return c.JSON(h.service.Session().Status())
}

// PlayPause toggles between playing and paused.
func (h *Handler) PlayPause(c *fiber.Ctx) error {
	h.service.Session().PlayPause()
	return c.JSON(h.service.Session().Status())
}

// Skip advances to the next song in the active ordering.
func (h *Handler) Skip(c *fiber.Ctx) error {
	if err := h.service.Session().Skip(); err != nil {
		return sendError(c, err)
	}
	return c.JSON(h.service.Session().Status())
}

// Back retreats to the previous song in the active ordering.
func (h *Handler) Back(c *fiber.Ctx) error {
	if err := h.service.Session().Back(); err != nil {
		return sendError(c, err)
	}
	return c.JSON(h.service.Session().Status())
}

// Stop halts playback.
func (h *Handler) Stop(c *fiber.Ctx) error {
	h.service.Session().Stop()
	return c.JSON(h.service.Session().Status())
}

// Seek moves the playback position of the current track.
func (h *Handler) Seek(c *fiber.Ctx) error {
	var req seekRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.Session().Seek(req.Seconds); err != nil {
		return sendError(c, err)
	}
	return c.JSON(h.service.Session().Status())
}

// ToggleShuffle switches shuffle on or off.
func (h *Handler) ToggleShuffle(c *fiber.Ctx) error {
	h.service.Session().ToggleShuffle()
	return c.JSON(h.service.Session().Status())
}

// SetRepeat sets the repeat mode, or cycles it when no mode is given.
func (h *Handler) SetRepeat(c *fiber.Ctx) error {
	var req repeatRequest
	if err := c.BodyParser(&req); err != nil || req.Mode == "" {
		h.service.Session().CycleRepeat()
		return c.JSON(h.service.Session().Status())
	}
	if err := h.service.Session().SetRepeat(req.Mode); err != nil {
		return sendError(c, err)
	}
	return c.JSON(h.service.Session().Status())
}

// GetStatus reports the transport state. Designed for cheap periodic polling
// of the playback position.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Session().Status())
}

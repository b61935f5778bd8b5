package library

import (
	"errors"
	"log/slog"
	"strconv"

	"vaulted/src/music"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the library feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the library feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, music.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, music.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, music.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, music.ErrUnreadable):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type playlistRequest struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

type songRequest struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Thumbnail string `json:"thumbnail"`
}

type reorderRequest struct {
	MovedID  int64 `json:"movedId"`
	TargetID int64 `json:"targetId"`
}

// GetPlaylists is the handler for listing all playlists.
func (h *Handler) GetPlaylists(c *fiber.Ctx) error {
	slog.Debug("GetPlaylists handler called")
	playlists, err := h.service.GetPlaylists(c.Context())
	if err != nil {
		slog.Error("Error loading playlists", "error", err)
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"playlists": playlists})
}

// GetPlaylist is the handler for getting a single playlist with its songs.
func (h *Handler) GetPlaylist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	playlist, err := h.service.GetPlaylist(c.Context(), id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(playlist)
}

// CreatePlaylist is the handler for creating a playlist.
func (h *Handler) CreatePlaylist(c *fiber.Ctx) error {
	var req playlistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	playlist, err := h.service.CreatePlaylist(c.Context(), req.Title, req.Thumbnail)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(playlist)
}

// UpdatePlaylist is the handler for editing a playlist.
func (h *Handler) UpdatePlaylist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req playlistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	playlist, err := h.service.EditPlaylist(c.Context(), id, req.Title, req.Thumbnail)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(playlist)
}

// DeletePlaylist is the handler for deleting a playlist.
func (h *Handler) DeletePlaylist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeletePlaylist(c.Context(), id); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSongs is the handler for listing a playlist's songs in display order.
func (h *Handler) GetSongs(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	songs, err := h.service.GetSongs(c.Context(), id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"songs": songs})
}

// GetSong is the handler for getting a single song.
func (h *Handler) GetSong(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	song, err := h.service.GetSong(c.Context(), id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(song)
}

// UpdateSong is the handler for editing a song.
func (h *Handler) UpdateSong(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req songRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	song, err := h.service.EditSong(c.Context(), id, req.Title, req.Artist, req.Thumbnail)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(song)
}

// DeleteSong is the handler for deleting a song.
func (h *Handler) DeleteSong(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteSong(c.Context(), id); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReorderSongs is the handler for rearranging a playlist's display order.
func (h *Handler) ReorderSongs(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.Reorder(c.Context(), id, req.MovedID, req.TargetID); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetStats is the handler for overall library counts.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	playlists, songs, err := h.service.Stats(c.Context())
	if err != nil {
		slog.Error("Error loading library stats", "error", err)
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"playlists": playlists, "songs": songs})
}

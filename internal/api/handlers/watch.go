package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/riverlink/danmaku-go/internal/client"
)

// WatchHandler handles watched-room requests.
type WatchHandler struct {
	sessionManager *client.SessionManager
	logger         *zap.SugaredLogger
}

// NewWatchHandler creates a new watch handler.
func NewWatchHandler(sm *client.SessionManager, logger *zap.SugaredLogger) *WatchHandler {
	return &WatchHandler{
		sessionManager: sm,
		logger:         logger,
	}
}

// CreateRequest represents a watch-creation request.
type CreateRequest struct {
	RoomUID int64 `json:"roomUid"`
}

// Create starts watching a room.
func (h *WatchHandler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.RoomUID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "roomUid is required",
		})
	}

	watch, err := h.sessionManager.CreateWatch(context.Background(), req.RoomUID)
	if err != nil {
		if err == client.ErrWatchExists {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "Watch already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    watch.Snapshot(),
	})
}

// List returns all watches.
func (h *WatchHandler) List(c *fiber.Ctx) error {
	watches := h.sessionManager.ListWatches()

	snapshots := make([]client.WatchSnapshot, len(watches))
	for i, w := range watches {
		snapshots[i] = w.Snapshot()
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"watches": snapshots,
			"stats":   h.sessionManager.GetStats(),
		},
	})
}

// Get returns a specific watch.
func (h *WatchHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	watch, exists := h.sessionManager.GetWatch(id)
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Watch not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    watch.Snapshot(),
	})
}

// Delete stops a watch.
func (h *WatchHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	err := h.sessionManager.StopWatch(context.Background(), id)
	if err != nil {
		if err == client.ErrWatchNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Watch not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Watch stopped",
	})
}

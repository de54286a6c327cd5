package handlers

import (
	"time"

	"planhub/internal/reminder"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	scheduler *reminder.Scheduler
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(scheduler *reminder.Scheduler) *HealthHandler {
	return &HealthHandler{scheduler: scheduler}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"scheduler": h.scheduler.IsRunning(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

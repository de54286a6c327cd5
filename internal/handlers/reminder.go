package handlers

import (
	"context"
	"log"
	"time"

	"planhub/internal/reminder"

	"github.com/gofiber/fiber/v2"
)

// ReminderHandler exposes the reminder scheduler's operational surface.
type ReminderHandler struct {
	scheduler *reminder.Scheduler
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(scheduler *reminder.Scheduler) *ReminderHandler {
	return &ReminderHandler{scheduler: scheduler}
}

// Status returns the scheduler state and per-job next run times
// GET /api/reminders/status
func (h *ReminderHandler) Status(c *fiber.Ctx) error {
	status := h.scheduler.Status()

	nextRuns := make(map[string]string, len(status))
	for name, next := range status {
		nextRuns[name] = next.Format(time.RFC3339)
	}

	return c.JSON(fiber.Map{
		"running":   h.scheduler.IsRunning(),
		"next_runs": nextRuns,
	})
}

// RunNow triggers a full deadline check run in the background
// POST /api/reminders/run
func (h *ReminderHandler) RunNow(c *fiber.Ctx) error {
	log.Println("🚀 [REMINDER] Manual run requested via API")

	go h.scheduler.RunDeadlineChecks(context.Background())

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
	})
}

package store

import (
	"context"
	"time"

	"planhub/internal/models"
)

// DeadlineStore is the read/claim surface consumed by the reminder checks.
// All reads are point-in-time selects; the only writes are the two latch
// claims, each a single conditional update.
type DeadlineStore interface {
	// FindOverdueProjects returns non-completed projects with end_date <= today (local midnight).
	FindOverdueProjects(ctx context.Context, today time.Time) ([]models.Project, error)
	// FindUpcomingProjects returns non-completed projects with end_date in [from, to).
	FindUpcomingProjects(ctx context.Context, from, to time.Time) ([]models.Project, error)
	// FindOverdueTasks returns personal, non-completed, non-cancelled tasks with end_date <= today.
	FindOverdueTasks(ctx context.Context, today time.Time) ([]models.Task, error)
	// FindUpcomingTasks returns personal, non-completed, non-cancelled tasks with end_date in [from, to).
	FindUpcomingTasks(ctx context.Context, from, to time.Time) ([]models.Task, error)
	// FindDueTaskReminders returns unlatched tasks of any type with reminder_at <= now,
	// excluding completed tasks.
	FindDueTaskReminders(ctx context.Context, now time.Time) ([]models.Task, error)
	// FindCardsNearDeadline returns incomplete, unlatched cards with due_date in (from, to].
	FindCardsNearDeadline(ctx context.Context, from, to time.Time) ([]models.CardContext, error)
	// FindIncompleteCards returns every incomplete card with board/list context and
	// board membership joined in, for the daily digest.
	FindIncompleteCards(ctx context.Context) ([]models.CardContext, error)

	// ClaimTaskReminder atomically sets is_reminder_sent for the task if it is still
	// unset. It returns true only for the caller that won the claim, making it the
	// at-most-once gate for reminder dispatch.
	ClaimTaskReminder(ctx context.Context, taskID int64) (bool, error)
	// ClaimCardDeadlineReminder is the card-deadline equivalent of ClaimTaskReminder.
	ClaimCardDeadlineReminder(ctx context.Context, cardID int64) (bool, error)
}

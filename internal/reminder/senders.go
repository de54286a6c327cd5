package reminder

import (
	"context"
	"time"

	"planhub/internal/models"
)

// PushSender is the notification boundary: one method per alert category.
// Implementations are fire-and-forget transports; the checks log failures
// and move on rather than retrying.
type PushSender interface {
	NotifyProjectDeadlineOverdue(ctx context.Context, userIDs []int64, projectID int64, projectName string, daysOverdue int) error
	NotifyProjectDeadlineUpcoming(ctx context.Context, userIDs []int64, projectID int64, projectName string, daysLeft int) error
	NotifyTaskDeadlineOverdue(ctx context.Context, userID, taskID int64, title string, daysOverdue int) error
	NotifyTaskDeadlineUpcoming(ctx context.Context, userID, taskID int64, title string, daysLeft int) error
	NotifyTaskReminder(ctx context.Context, userID, taskID int64, title string, remindAt time.Time) error
	NotifyKanbanDailyReminder(ctx context.Context, userID int64, boardLabel string, cardTitles []string, totalCount int) error
	NotifyKanbanCardDeadline(ctx context.Context, userIDs []int64, cardID int64, cardTitle, boardTitle string, dueDate time.Time) error
}

// EmailSender is the email boundary. Recipients without an address are
// skipped before these are called.
type EmailSender interface {
	SendDeadlineReminderEmail(ctx context.Context, email, name string, projectID int64, projectName, projectCode string, dueDate time.Time, daysRemaining int, overdue bool) error
	SendTaskReminderEmail(ctx context.Context, email, name string, taskID int64, title string, remindAt time.Time) error
	SendKanbanDailyReminderEmail(ctx context.Context, email, name string, boards []models.DigestBoard) error
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Push event types published on user channels. The WebSocket gateway that
// delivers them to browsers lives in another service; this side terminates
// at the Redis publish.
const (
	EventProjectDeadlineOverdue  = "project_deadline_overdue"
	EventProjectDeadlineUpcoming = "project_deadline_upcoming"
	EventTaskDeadlineOverdue     = "task_deadline_overdue"
	EventTaskDeadlineUpcoming    = "task_deadline_upcoming"
	EventTaskReminder            = "task_reminder"
	EventKanbanDailyReminder     = "kanban_daily_reminder"
	EventKanbanCardDeadline      = "kanban_card_deadline"
)

// PushMessage is the envelope published on user:<id>:events channels.
type PushMessage struct {
	Type    string                 `json:"type"`
	UserID  int64                  `json:"userId"`
	Payload map[string]interface{} `json:"payload"`
}

// PushService publishes reminder notifications over Redis pub/sub.
type PushService struct {
	redis *RedisService
}

// NewPushService creates a new push notification service
func NewPushService(redisService *RedisService) *PushService {
	return &PushService{redis: redisService}
}

// publishToUser publishes one typed event on the user's channel.
func (s *PushService) publishToUser(ctx context.Context, userID int64, msgType string, payload map[string]interface{}) error {
	message := &PushMessage{
		Type:    msgType,
		UserID:  userID,
		Payload: payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	channel := fmt.Sprintf("user:%d:events", userID)
	return s.redis.Publish(ctx, channel, data)
}

// publishToUsers fans one payload out to several users, returning the first error
// after attempting every recipient.
func (s *PushService) publishToUsers(ctx context.Context, userIDs []int64, msgType string, payload map[string]interface{}) error {
	var firstErr error
	for _, id := range userIDs {
		if err := s.publishToUser(ctx, id, msgType, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NotifyProjectDeadlineOverdue alerts the project's notify-set that the deadline passed.
func (s *PushService) NotifyProjectDeadlineOverdue(ctx context.Context, userIDs []int64, projectID int64, projectName string, daysOverdue int) error {
	return s.publishToUsers(ctx, userIDs, EventProjectDeadlineOverdue, map[string]interface{}{
		"projectId":   projectID,
		"projectName": projectName,
		"daysOverdue": daysOverdue,
	})
}

// NotifyProjectDeadlineUpcoming warns the project's notify-set one day ahead.
func (s *PushService) NotifyProjectDeadlineUpcoming(ctx context.Context, userIDs []int64, projectID int64, projectName string, daysLeft int) error {
	return s.publishToUsers(ctx, userIDs, EventProjectDeadlineUpcoming, map[string]interface{}{
		"projectId":   projectID,
		"projectName": projectName,
		"daysLeft":    daysLeft,
	})
}

// NotifyTaskDeadlineOverdue alerts a task creator that the task is overdue.
func (s *PushService) NotifyTaskDeadlineOverdue(ctx context.Context, userID, taskID int64, title string, daysOverdue int) error {
	return s.publishToUser(ctx, userID, EventTaskDeadlineOverdue, map[string]interface{}{
		"taskId":      taskID,
		"title":       title,
		"daysOverdue": daysOverdue,
	})
}

// NotifyTaskDeadlineUpcoming warns a task creator one day ahead.
func (s *PushService) NotifyTaskDeadlineUpcoming(ctx context.Context, userID, taskID int64, title string, daysLeft int) error {
	return s.publishToUser(ctx, userID, EventTaskDeadlineUpcoming, map[string]interface{}{
		"taskId":   taskID,
		"title":    title,
		"daysLeft": daysLeft,
	})
}

// NotifyTaskReminder fires a user-set reminder timestamp.
func (s *PushService) NotifyTaskReminder(ctx context.Context, userID, taskID int64, title string, remindAt time.Time) error {
	return s.publishToUser(ctx, userID, EventTaskReminder, map[string]interface{}{
		"taskId":   taskID,
		"title":    title,
		"remindAt": remindAt.Format(time.RFC3339),
	})
}

// NotifyKanbanDailyReminder delivers the consolidated daily digest notification.
func (s *PushService) NotifyKanbanDailyReminder(ctx context.Context, userID int64, boardLabel string, cardTitles []string, totalCount int) error {
	return s.publishToUser(ctx, userID, EventKanbanDailyReminder, map[string]interface{}{
		"boardLabel": boardLabel,
		"cardTitles": cardTitles,
		"totalCount": totalCount,
	})
}

// NotifyKanbanCardDeadline alerts a card's notify-set minutes before the due date.
func (s *PushService) NotifyKanbanCardDeadline(ctx context.Context, userIDs []int64, cardID int64, cardTitle, boardTitle string, dueDate time.Time) error {
	return s.publishToUsers(ctx, userIDs, EventKanbanCardDeadline, map[string]interface{}{
		"cardId":     cardID,
		"cardTitle":  cardTitle,
		"boardTitle": boardTitle,
		"dueDate":    dueDate.Format(time.RFC3339),
	})
}

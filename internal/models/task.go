package models

import "time"

// Task status values
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
	TaskStatusCancelled  = "CANCELLED"
)

// Task types. Only personal tasks participate in deadline checks.
const (
	TaskTypePersonal = "PERSONAL"
	TaskTypeProject  = "PROJECT"
)

// Task represents a task row with its creator identity joined in.
type Task struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	EndDate   *time.Time   `json:"end_date,omitempty"`
	Status    string       `json:"status"`
	Type      string       `json:"type"`
	CreatorID int64        `json:"creator_id"`
	Creator   NotifyTarget `json:"creator"`

	// ReminderAt is an arbitrary user-set reminder timestamp, independent of EndDate.
	// IsReminderSent is a one-way latch: once claimed, this occurrence never re-fires.
	ReminderAt     *time.Time `json:"reminder_at,omitempty"`
	IsReminderSent bool       `json:"is_reminder_sent"`
}

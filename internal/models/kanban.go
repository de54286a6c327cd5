package models

import "time"

// KanbanBoard is the top of the board -> list -> card hierarchy.
type KanbanBoard struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// KanbanList groups cards on a board. Lists titled "done"/"hoàn thành"
// (case-insensitive) are excluded from the daily digest.
type KanbanList struct {
	ID      int64  `json:"id"`
	BoardID int64  `json:"board_id"`
	Title   string `json:"title"`
}

// KanbanCard represents a card with its assignees joined in.
// DeadlineReminderSent latches the 10-minute deadline alert per occurrence.
type KanbanCard struct {
	ID                   int64          `json:"id"`
	ListID               int64          `json:"list_id"`
	Title                string         `json:"title"`
	DueDate              *time.Time     `json:"due_date,omitempty"`
	Completed            bool           `json:"completed"`
	DeadlineReminderSent bool           `json:"deadline_reminder_sent"`
	Assignees            []NotifyTarget `json:"assignees,omitempty"`
}

// CardContext is a card together with the board/list context and the board
// membership needed for recipient resolution. Deadline queries return these
// fully joined so dispatch is a pure in-memory pass.
type CardContext struct {
	Card       KanbanCard     `json:"card"`
	BoardID    int64          `json:"board_id"`
	BoardTitle string         `json:"board_title"`
	ListTitle  string         `json:"list_title"`
	Members    []NotifyTarget `json:"members,omitempty"`
}

// DigestCard is one line of a user's daily kanban digest.
type DigestCard struct {
	BoardTitle string     `json:"board_title"`
	ListTitle  string     `json:"list_title"`
	CardTitle  string     `json:"card_title"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// DigestBoard groups a user's digest cards by board for the consolidated email.
type DigestBoard struct {
	Title string       `json:"title"`
	Cards []DigestCard `json:"cards"`
}

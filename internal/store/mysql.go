package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"planhub/internal/database"
	"planhub/internal/models"
)

// MySQLDeadlineStore implements DeadlineStore on the shared MySQL connection.
type MySQLDeadlineStore struct {
	db *database.DB
}

// NewMySQLDeadlineStore creates a new MySQL-backed deadline store
func NewMySQLDeadlineStore(db *database.DB) *MySQLDeadlineStore {
	return &MySQLDeadlineStore{db: db}
}

const projectSelect = `
	SELECT p.id, p.name, p.code, p.end_date, p.status, p.manager_id,
	       m.id, m.name, COALESCE(m.email, '')
	FROM projects p
	JOIN users m ON m.id = p.manager_id
`

// FindOverdueProjects returns non-completed projects whose end_date has passed today's local midnight.
func (s *MySQLDeadlineStore) FindOverdueProjects(ctx context.Context, today time.Time) ([]models.Project, error) {
	query := projectSelect + ` WHERE p.end_date IS NOT NULL AND p.end_date <= ? AND p.status != ?`
	return s.queryProjects(ctx, query, today, models.ProjectStatusCompleted)
}

// FindUpcomingProjects returns non-completed projects due within [from, to).
func (s *MySQLDeadlineStore) FindUpcomingProjects(ctx context.Context, from, to time.Time) ([]models.Project, error) {
	query := projectSelect + ` WHERE p.end_date IS NOT NULL AND p.end_date >= ? AND p.end_date < ? AND p.status != ?`
	return s.queryProjects(ctx, query, from, to, models.ProjectStatusCompleted)
}

func (s *MySQLDeadlineStore) queryProjects(ctx context.Context, query string, args ...interface{}) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		var endDate sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &endDate, &p.Status, &p.ManagerID,
			&p.Manager.ID, &p.Manager.Name, &p.Manager.Email); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if endDate.Valid {
			t := endDate.Time
			p.EndDate = &t
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		if err := s.loadProjectMembers(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (s *MySQLDeadlineStore) loadProjectMembers(ctx context.Context, p *models.Project) error {
	query := `
		SELECT pm.role, u.id, u.name, COALESCE(u.email, '')
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = ?
		ORDER BY pm.role, u.id
	`
	rows, err := s.db.QueryContext(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("failed to query project members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var t models.NotifyTarget
		if err := rows.Scan(&role, &t.ID, &t.Name, &t.Email); err != nil {
			return fmt.Errorf("failed to scan project member: %w", err)
		}
		switch role {
		case models.ProjectRoleImplementer:
			p.Implementers = append(p.Implementers, t)
		case models.ProjectRoleFollower:
			p.Followers = append(p.Followers, t)
		}
	}
	return rows.Err()
}

const taskSelect = `
	SELECT t.id, t.title, t.end_date, t.status, t.type, t.creator_id,
	       t.reminder_at, t.is_reminder_sent,
	       u.id, u.name, COALESCE(u.email, '')
	FROM tasks t
	JOIN users u ON u.id = t.creator_id
`

// FindOverdueTasks returns overdue personal tasks that are neither completed nor cancelled.
func (s *MySQLDeadlineStore) FindOverdueTasks(ctx context.Context, today time.Time) ([]models.Task, error) {
	query := taskSelect + `
		WHERE t.end_date IS NOT NULL AND t.end_date <= ?
		  AND t.status NOT IN (?, ?) AND t.type = ?`
	return s.queryTasks(ctx, query, today,
		models.TaskStatusCompleted, models.TaskStatusCancelled, models.TaskTypePersonal)
}

// FindUpcomingTasks returns personal tasks due within [from, to).
func (s *MySQLDeadlineStore) FindUpcomingTasks(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	query := taskSelect + `
		WHERE t.end_date IS NOT NULL AND t.end_date >= ? AND t.end_date < ?
		  AND t.status NOT IN (?, ?) AND t.type = ?`
	return s.queryTasks(ctx, query, from, to,
		models.TaskStatusCompleted, models.TaskStatusCancelled, models.TaskTypePersonal)
}

// FindDueTaskReminders returns tasks of any type whose reminder has come due and
// has not been latched yet.
func (s *MySQLDeadlineStore) FindDueTaskReminders(ctx context.Context, now time.Time) ([]models.Task, error) {
	query := taskSelect + `
		WHERE t.reminder_at IS NOT NULL AND t.reminder_at <= ?
		  AND t.is_reminder_sent = FALSE AND t.status != ?`
	return s.queryTasks(ctx, query, now, models.TaskStatusCompleted)
}

func (s *MySQLDeadlineStore) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		var endDate, reminderAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &endDate, &t.Status, &t.Type, &t.CreatorID,
			&reminderAt, &t.IsReminderSent,
			&t.Creator.ID, &t.Creator.Name, &t.Creator.Email); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if endDate.Valid {
			v := endDate.Time
			t.EndDate = &v
		}
		if reminderAt.Valid {
			v := reminderAt.Time
			t.ReminderAt = &v
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

const cardSelect = `
	SELECT c.id, c.list_id, c.title, c.due_date, c.completed, c.deadline_reminder_sent,
	       b.id, b.title, l.title
	FROM kanban_cards c
	JOIN kanban_lists l ON l.id = c.list_id
	JOIN kanban_boards b ON b.id = l.board_id
`

// FindCardsNearDeadline returns incomplete, unlatched cards due within (from, to].
func (s *MySQLDeadlineStore) FindCardsNearDeadline(ctx context.Context, from, to time.Time) ([]models.CardContext, error) {
	query := cardSelect + `
		WHERE c.due_date IS NOT NULL AND c.due_date > ? AND c.due_date <= ?
		  AND c.completed = FALSE AND c.deadline_reminder_sent = FALSE`
	return s.queryCards(ctx, query, from, to)
}

// FindIncompleteCards returns every incomplete card with its board/list context.
// Done-list exclusion is applied by the digest, which needs the list title anyway.
func (s *MySQLDeadlineStore) FindIncompleteCards(ctx context.Context) ([]models.CardContext, error) {
	query := cardSelect + ` WHERE c.completed = FALSE ORDER BY b.id, l.id, c.id`
	return s.queryCards(ctx, query)
}

func (s *MySQLDeadlineStore) queryCards(ctx context.Context, query string, args ...interface{}) ([]models.CardContext, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []models.CardContext
	for rows.Next() {
		var cc models.CardContext
		var dueDate sql.NullTime
		if err := rows.Scan(&cc.Card.ID, &cc.Card.ListID, &cc.Card.Title, &dueDate,
			&cc.Card.Completed, &cc.Card.DeadlineReminderSent,
			&cc.BoardID, &cc.BoardTitle, &cc.ListTitle); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if dueDate.Valid {
			v := dueDate.Time
			cc.Card.DueDate = &v
		}
		cards = append(cards, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cards {
		if err := s.loadCardAssignees(ctx, &cards[i].Card); err != nil {
			return nil, err
		}
		members, err := s.loadBoardMembers(ctx, cards[i].BoardID)
		if err != nil {
			return nil, err
		}
		cards[i].Members = members
	}
	return cards, nil
}

func (s *MySQLDeadlineStore) loadCardAssignees(ctx context.Context, card *models.KanbanCard) error {
	query := `
		SELECT u.id, u.name, COALESCE(u.email, '')
		FROM kanban_card_assignees a
		JOIN users u ON u.id = a.user_id
		WHERE a.card_id = ?
		ORDER BY u.id
	`
	rows, err := s.db.QueryContext(ctx, query, card.ID)
	if err != nil {
		return fmt.Errorf("failed to query card assignees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.NotifyTarget
		if err := rows.Scan(&t.ID, &t.Name, &t.Email); err != nil {
			return fmt.Errorf("failed to scan card assignee: %w", err)
		}
		card.Assignees = append(card.Assignees, t)
	}
	return rows.Err()
}

func (s *MySQLDeadlineStore) loadBoardMembers(ctx context.Context, boardID int64) ([]models.NotifyTarget, error) {
	query := `
		SELECT u.id, u.name, COALESCE(u.email, '')
		FROM kanban_board_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.board_id = ?
		ORDER BY u.id
	`
	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query board members: %w", err)
	}
	defer rows.Close()

	var members []models.NotifyTarget
	for rows.Next() {
		var t models.NotifyTarget
		if err := rows.Scan(&t.ID, &t.Name, &t.Email); err != nil {
			return nil, fmt.Errorf("failed to scan board member: %w", err)
		}
		members = append(members, t)
	}
	return members, rows.Err()
}

// ClaimTaskReminder flips the reminder latch only if it is still unset.
// The rows-affected count decides the claim, so concurrent runs cannot
// both win the same occurrence.
func (s *MySQLDeadlineStore) ClaimTaskReminder(ctx context.Context, taskID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET is_reminder_sent = TRUE WHERE id = ? AND is_reminder_sent = FALSE`, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to claim task reminder %d: %w", taskID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ClaimCardDeadlineReminder is the card equivalent of ClaimTaskReminder.
func (s *MySQLDeadlineStore) ClaimCardDeadlineReminder(ctx context.Context, cardID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE kanban_cards SET deadline_reminder_sent = TRUE WHERE id = ? AND deadline_reminder_sent = FALSE`, cardID)
	if err != nil {
		return false, fmt.Errorf("failed to claim card deadline reminder %d: %w", cardID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

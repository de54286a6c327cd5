package store

import (
	"context"
	"testing"
	"time"

	"planhub/internal/database"
	"planhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*MySQLDeadlineStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewMySQLDeadlineStore(&database.DB{DB: db}), mock
}

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "end_date", "status", "type", "creator_id",
		"reminder_at", "is_reminder_sent", "u_id", "u_name", "u_email",
	})
}

func TestFindOverdueTasks_FiltersStatusAndType(t *testing.T) {
	st, mock := newMockStore(t)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	// The status and type predicates are the only guard keeping completed,
	// cancelled, and non-personal tasks out of the overdue feed.
	mock.ExpectQuery(`t\.end_date <= \?\s+AND t\.status NOT IN \(\?, \?\) AND t\.type = \?`).
		WithArgs(today, models.TaskStatusCompleted, models.TaskStatusCancelled, models.TaskTypePersonal).
		WillReturnRows(taskRows().
			AddRow(5, "Nộp báo cáo", end, "in_progress", models.TaskTypePersonal, 7,
				nil, false, 7, "An", "an@example.com"))

	tasks, err := st.FindOverdueTasks(context.Background(), today)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID != 5 || got.Creator.ID != 7 || got.Creator.Email != "an@example.com" {
		t.Errorf("unexpected task scan: %+v", got)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("expected end date %v, got %v", end, got.EndDate)
	}
	if got.ReminderAt != nil {
		t.Errorf("expected nil reminder time, got %v", got.ReminderAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindUpcomingTasks_FiltersStatusAndType(t *testing.T) {
	st, mock := newMockStore(t)
	from := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	// Half-open window plus the same status/type guard as the overdue read.
	mock.ExpectQuery(`t\.end_date >= \? AND t\.end_date < \?\s+AND t\.status NOT IN \(\?, \?\) AND t\.type = \?`).
		WithArgs(from, to, models.TaskStatusCompleted, models.TaskStatusCancelled, models.TaskTypePersonal).
		WillReturnRows(taskRows())

	tasks, err := st.FindUpcomingTasks(context.Background(), from, to)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindProjects_OverdueAndUpcomingAreDisjoint(t *testing.T) {
	st, mock := newMockStore(t)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	dayAfter := tomorrow.AddDate(0, 0, 1)

	// Overdue is an inclusive <= today bound; upcoming is [tomorrow, dayAfter).
	// A project due exactly at tomorrow midnight can match only the second.
	mock.ExpectQuery(`p\.end_date <= \? AND p\.status != \?`).
		WithArgs(today, models.ProjectStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "code", "end_date", "status", "manager_id",
			"m_id", "m_name", "m_email",
		}))
	mock.ExpectQuery(`p\.end_date >= \? AND p\.end_date < \? AND p\.status != \?`).
		WithArgs(tomorrow, dayAfter, models.ProjectStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "code", "end_date", "status", "manager_id",
			"m_id", "m_name", "m_email",
		}).AddRow(3, "CRM", "CRM-01", tomorrow, "active", 1, 1, "M", "m@example.com"))
	mock.ExpectQuery(`FROM project_members pm`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"role", "id", "name", "email"}).
			AddRow(models.ProjectRoleImplementer, 2, "A", "a@example.com"))

	overdue, err := st.FindOverdueProjects(context.Background(), today)
	if err != nil {
		t.Fatalf("overdue query failed: %v", err)
	}
	upcoming, err := st.FindUpcomingProjects(context.Background(), tomorrow, dayAfter)
	if err != nil {
		t.Fatalf("upcoming query failed: %v", err)
	}

	if len(overdue) != 0 {
		t.Errorf("expected no overdue projects, got %d", len(overdue))
	}
	if len(upcoming) != 1 {
		t.Fatalf("expected 1 upcoming project, got %d", len(upcoming))
	}
	if len(upcoming[0].Implementers) != 1 || upcoming[0].Implementers[0].ID != 2 {
		t.Errorf("expected implementer joined in, got %+v", upcoming[0].Implementers)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindDueTaskReminders_ExcludesLatchedAndCompleted(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`t\.reminder_at <= \?\s+AND t\.is_reminder_sent = FALSE AND t\.status != \?`).
		WithArgs(now, models.TaskStatusCompleted).
		WillReturnRows(taskRows())

	if _, err := st.FindDueTaskReminders(context.Background(), now); err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestClaimTaskReminder_RowsAffectedDecides(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE tasks SET is_reminder_sent = TRUE WHERE id = \? AND is_reminder_sent = FALSE`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tasks SET is_reminder_sent = TRUE WHERE id = \? AND is_reminder_sent = FALSE`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := st.ClaimTaskReminder(context.Background(), 9)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !claimed {
		t.Error("first claim should win")
	}

	claimed, err = st.ClaimTaskReminder(context.Background(), 9)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if claimed {
		t.Error("second claim should lose")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestClaimCardDeadlineReminder_RowsAffectedDecides(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE kanban_cards SET deadline_reminder_sent = TRUE WHERE id = \? AND deadline_reminder_sent = FALSE`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := st.ClaimCardDeadlineReminder(context.Background(), 4)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if claimed {
		t.Error("latched card should not be claimable")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"planhub/internal/logging"
	"planhub/internal/models"
	"planhub/internal/store"

	"github.com/google/uuid"
)

// Checker runs the deadline and reminder checks against the data store and
// drives dispatch. Each top-level check is an independent error boundary:
// a failing query or send never aborts the sibling checks or the scheduler.
type Checker struct {
	store  store.DeadlineStore
	push   PushSender
	email  EmailSender
	loc    *time.Location
	window time.Duration // card-deadline look-ahead

	// now is swappable for tests
	now func() time.Time
}

// NewChecker creates a checker. window is how far ahead the card-deadline
// check looks (10 minutes in production).
func NewChecker(st store.DeadlineStore, push PushSender, email EmailSender, loc *time.Location, window time.Duration) *Checker {
	if loc == nil {
		loc = time.UTC
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &Checker{
		store:  st,
		push:   push,
		email:  email,
		loc:    loc,
		window: window,
		now:    time.Now,
	}
}

// RunDailyChecks executes the full daily batch sequentially: project and task
// deadline checks, then the kanban digest. Failures are logged per check.
func (c *Checker) RunDailyChecks(ctx context.Context) {
	log.Println("⏰ [REMINDER] Running daily deadline checks...")
	start := time.Now()
	runID := uuid.New().String()

	c.runCheck(ctx, "overdue_projects", runID, c.CheckOverdueProjects)
	c.runCheck(ctx, "upcoming_projects", runID, c.CheckUpcomingProjects)
	c.runCheck(ctx, "overdue_tasks", runID, c.CheckOverdueTasks)
	c.runCheck(ctx, "upcoming_tasks", runID, c.CheckUpcomingTasks)
	c.runCheck(ctx, "kanban_daily_digest", runID, c.RunDailyDigest)

	log.Printf("✅ [REMINDER] Daily checks completed in %v", time.Since(start))
}

// RunMinutelyChecks executes the near-term batch: due task reminders and
// kanban cards approaching their deadline.
func (c *Checker) RunMinutelyChecks(ctx context.Context) {
	runID := uuid.New().String()
	c.runCheck(ctx, "task_reminders", runID, c.CheckTaskReminders)
	c.runCheck(ctx, "card_deadlines", runID, c.CheckCardDeadlines)
}

// runCheck is the per-check error boundary. Checks in one batch share a run id
// so their log lines can be correlated.
func (c *Checker) runCheck(ctx context.Context, name, runID string, fn func(context.Context) error) {
	logger := logging.WithCheck(name, runID)
	if err := fn(ctx); err != nil {
		checksTotal.WithLabelValues(name, "error").Inc()
		logger.Error("check failed", "error", err)
		return
	}
	checksTotal.WithLabelValues(name, "ok").Inc()
	logger.Debug("check completed")
}

// CheckOverdueProjects notifies the project notify-set for every project whose
// deadline has passed. Recurs daily until the project is completed; no latch.
func (c *Checker) CheckOverdueProjects(ctx context.Context) error {
	today := StartOfDay(c.now(), c.loc)

	projects, err := c.store.FindOverdueProjects(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to query overdue projects: %w", err)
	}

	for i := range projects {
		p := &projects[i]
		if p.EndDate == nil {
			continue
		}
		daysOverdue := DaysBetween(today, StartOfDay(*p.EndDate, c.loc))
		c.dispatchProjectDeadline(ctx, p, daysOverdue, true)
	}

	if len(projects) > 0 {
		log.Printf("📣 [REMINDER] Notified %d overdue projects", len(projects))
	}
	return nil
}

// CheckUpcomingProjects warns the notify-set for projects due tomorrow.
func (c *Checker) CheckUpcomingProjects(ctx context.Context) error {
	today := StartOfDay(c.now(), c.loc)
	tomorrow := today.AddDate(0, 0, 1)
	dayAfter := today.AddDate(0, 0, 2)

	projects, err := c.store.FindUpcomingProjects(ctx, tomorrow, dayAfter)
	if err != nil {
		return fmt.Errorf("failed to query upcoming projects: %w", err)
	}

	for i := range projects {
		p := &projects[i]
		if p.EndDate == nil {
			continue
		}
		daysLeft := DaysBetween(StartOfDay(*p.EndDate, c.loc), today)
		c.dispatchProjectDeadline(ctx, p, daysLeft, false)
	}

	if len(projects) > 0 {
		log.Printf("📣 [REMINDER] Notified %d upcoming projects", len(projects))
	}
	return nil
}

// dispatchProjectDeadline sends one push to the whole notify-set and one email
// per recipient with an address. Each send has its own error boundary so one
// recipient's failure cannot starve the rest of the batch.
func (c *Checker) dispatchProjectDeadline(ctx context.Context, p *models.Project, days int, overdue bool) {
	recipients := ProjectRecipients(p)
	if len(recipients) == 0 {
		return
	}
	userIDs := models.TargetIDs(recipients)

	category := "project_upcoming"
	signedDays := days
	var pushErr error
	if overdue {
		category = "project_overdue"
		signedDays = -days
		pushErr = c.push.NotifyProjectDeadlineOverdue(ctx, userIDs, p.ID, p.Name, days)
	} else {
		pushErr = c.push.NotifyProjectDeadlineUpcoming(ctx, userIDs, p.ID, p.Name, days)
	}
	if pushErr != nil {
		dispatchErrorsTotal.WithLabelValues(category, "push").Inc()
		log.Printf("⚠️  [REMINDER] Push failed for project %d: %v", p.ID, pushErr)
	} else {
		remindersSentTotal.WithLabelValues(category, "push").Add(float64(len(userIDs)))
	}

	for _, r := range recipients {
		if r.Email == "" {
			continue
		}
		err := c.email.SendDeadlineReminderEmail(ctx, r.Email, r.Name, p.ID, p.Name, p.Code, *p.EndDate, signedDays, overdue)
		if err != nil {
			dispatchErrorsTotal.WithLabelValues(category, "email").Inc()
			log.Printf("⚠️  [REMINDER] Email to %s failed for project %d: %v", r.Email, p.ID, err)
			continue
		}
		remindersSentTotal.WithLabelValues(category, "email").Inc()
	}
}

// CheckOverdueTasks notifies creators of overdue personal tasks.
func (c *Checker) CheckOverdueTasks(ctx context.Context) error {
	today := StartOfDay(c.now(), c.loc)

	tasks, err := c.store.FindOverdueTasks(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to query overdue tasks: %w", err)
	}

	for i := range tasks {
		t := &tasks[i]
		if t.EndDate == nil {
			continue
		}
		daysOverdue := DaysBetween(today, StartOfDay(*t.EndDate, c.loc))
		if err := c.push.NotifyTaskDeadlineOverdue(ctx, t.CreatorID, t.ID, t.Title, daysOverdue); err != nil {
			dispatchErrorsTotal.WithLabelValues("task_overdue", "push").Inc()
			log.Printf("⚠️  [REMINDER] Push failed for overdue task %d: %v", t.ID, err)
			continue
		}
		remindersSentTotal.WithLabelValues("task_overdue", "push").Inc()
	}
	return nil
}

// CheckUpcomingTasks warns creators of personal tasks due tomorrow.
func (c *Checker) CheckUpcomingTasks(ctx context.Context) error {
	today := StartOfDay(c.now(), c.loc)
	tomorrow := today.AddDate(0, 0, 1)
	dayAfter := today.AddDate(0, 0, 2)

	tasks, err := c.store.FindUpcomingTasks(ctx, tomorrow, dayAfter)
	if err != nil {
		return fmt.Errorf("failed to query upcoming tasks: %w", err)
	}

	for i := range tasks {
		t := &tasks[i]
		if t.EndDate == nil {
			continue
		}
		daysLeft := DaysBetween(StartOfDay(*t.EndDate, c.loc), today)
		if err := c.push.NotifyTaskDeadlineUpcoming(ctx, t.CreatorID, t.ID, t.Title, daysLeft); err != nil {
			dispatchErrorsTotal.WithLabelValues("task_upcoming", "push").Inc()
			log.Printf("⚠️  [REMINDER] Push failed for upcoming task %d: %v", t.ID, err)
			continue
		}
		remindersSentTotal.WithLabelValues("task_upcoming", "push").Inc()
	}
	return nil
}

// CheckTaskReminders fires user-set reminder timestamps that have come due.
// The latch is claimed atomically before dispatch, so overlapping runs and
// crashes both degrade to at-most-once delivery per occurrence.
func (c *Checker) CheckTaskReminders(ctx context.Context) error {
	tasks, err := c.store.FindDueTaskReminders(ctx, c.now())
	if err != nil {
		return fmt.Errorf("failed to query due task reminders: %w", err)
	}

	for i := range tasks {
		t := &tasks[i]
		if t.ReminderAt == nil {
			continue
		}

		claimed, err := c.store.ClaimTaskReminder(ctx, t.ID)
		if err != nil {
			log.Printf("⚠️  [REMINDER] Failed to claim reminder for task %d: %v", t.ID, err)
			continue
		}
		if !claimed {
			// Another run already owns this occurrence.
			continue
		}

		if err := c.push.NotifyTaskReminder(ctx, t.CreatorID, t.ID, t.Title, *t.ReminderAt); err != nil {
			dispatchErrorsTotal.WithLabelValues("task_reminder", "push").Inc()
			log.Printf("⚠️  [REMINDER] Push failed for task reminder %d: %v", t.ID, err)
		} else {
			remindersSentTotal.WithLabelValues("task_reminder", "push").Inc()
		}

		if t.Creator.Email != "" {
			if err := c.email.SendTaskReminderEmail(ctx, t.Creator.Email, t.Creator.Name, t.ID, t.Title, *t.ReminderAt); err != nil {
				dispatchErrorsTotal.WithLabelValues("task_reminder", "email").Inc()
				log.Printf("⚠️  [REMINDER] Email failed for task reminder %d: %v", t.ID, err)
			} else {
				remindersSentTotal.WithLabelValues("task_reminder", "email").Inc()
			}
		}
	}
	return nil
}

// CheckCardDeadlines alerts card notify-sets for cards due within the
// look-ahead window. Latch claimed before dispatch, same as task reminders.
func (c *Checker) CheckCardDeadlines(ctx context.Context) error {
	now := c.now()

	cards, err := c.store.FindCardsNearDeadline(ctx, now, now.Add(c.window))
	if err != nil {
		return fmt.Errorf("failed to query cards near deadline: %w", err)
	}

	for i := range cards {
		cc := &cards[i]
		if cc.Card.DueDate == nil {
			continue
		}

		claimed, err := c.store.ClaimCardDeadlineReminder(ctx, cc.Card.ID)
		if err != nil {
			log.Printf("⚠️  [REMINDER] Failed to claim deadline reminder for card %d: %v", cc.Card.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		recipients := CardRecipients(&cc.Card, cc.Members)
		if len(recipients) == 0 {
			continue
		}
		userIDs := models.TargetIDs(recipients)

		if err := c.push.NotifyKanbanCardDeadline(ctx, userIDs, cc.Card.ID, cc.Card.Title, cc.BoardTitle, *cc.Card.DueDate); err != nil {
			dispatchErrorsTotal.WithLabelValues("card_deadline", "push").Inc()
			log.Printf("⚠️  [REMINDER] Push failed for card %d: %v", cc.Card.ID, err)
			continue
		}
		remindersSentTotal.WithLabelValues("card_deadline", "push").Add(float64(len(userIDs)))
	}
	return nil
}

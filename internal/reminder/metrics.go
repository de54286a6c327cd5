package reminder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// checksTotal counts check executions by name and outcome.
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planhub_reminder_checks_total",
		Help: "Total number of reminder check executions by check and result",
	}, []string{"check", "result"}) // result: "ok" or "error"

	// remindersSentTotal counts dispatched reminders by category and channel.
	remindersSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planhub_reminders_sent_total",
		Help: "Total number of reminders dispatched by category and channel",
	}, []string{"category", "channel"}) // channel: "push" or "email"

	// dispatchErrorsTotal counts individual send failures by category and channel.
	dispatchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planhub_reminder_dispatch_errors_total",
		Help: "Total number of failed reminder sends by category and channel",
	}, []string{"category", "channel"})

	// digestRecipientsTotal counts users who received a daily kanban digest.
	digestRecipientsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planhub_digest_recipients_total",
		Help: "Total number of users who received a daily kanban digest",
	})
)

package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"planhub/internal/config"
	"planhub/internal/notify"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Job names registered with the scheduler.
const (
	JobDailyChecks    = "daily_checks"
	JobMinutelyChecks = "minutely_checks"
)

// Scheduler owns the two repeating timers of the reminder subsystem: the
// daily 08:00 batch and the minutely near-term batch. Runs are serialized
// with a Redis lock keyed per job and minute bucket, so an overrunning run
// cannot overlap the next tick and multiple instances dedupe naturally.
type Scheduler struct {
	scheduler  gocron.Scheduler
	checker    *Checker
	redis      *notify.RedisService
	instanceID string

	dailyCron string
	interval  time.Duration
	lockTTL   time.Duration
	loc       *time.Location

	mu      sync.Mutex
	running bool
	jobs    map[string]gocron.Job
}

// NewScheduler creates the reminder scheduler. The daily cron expression is
// validated up front so a bad config fails at startup, not at 08:00.
func NewScheduler(cfg *config.Config, checker *Checker, redisService *notify.RedisService) (*Scheduler, error) {
	loc := cfg.Location()

	if _, err := NextDailyRun(time.Now(), loc, cfg.DailyCron); err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler:  scheduler,
		checker:    checker,
		redis:      redisService,
		instanceID: uuid.New().String(),
		dailyCron:  cfg.DailyCron,
		interval:   cfg.MinutelyInterval,
		lockTTL:    cfg.RunLockTTL,
		loc:        loc,
		jobs:       make(map[string]gocron.Job),
	}, nil
}

// Start registers both timers and begins running. The daily batch first fires
// at the next cron occurrence — a process started after 08:00 local waits for
// tomorrow, avoiding duplicate sends on every restart. The minutely batch
// fires once immediately, then every period.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	dailyJob, err := s.scheduler.NewJob(
		gocron.CronJob(s.dailyCron, false),
		gocron.NewTask(func() {
			s.runLocked(ctx, JobDailyChecks, s.checker.RunDailyChecks)
		}),
		gocron.WithName(JobDailyChecks),
	)
	if err != nil {
		return fmt.Errorf("failed to register daily job: %w", err)
	}
	s.jobs[JobDailyChecks] = dailyJob

	minutelyJob, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			s.runLocked(ctx, JobMinutelyChecks, s.checker.RunMinutelyChecks)
		}),
		gocron.WithName(JobMinutelyChecks),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to register minutely job: %w", err)
	}
	s.jobs[JobMinutelyChecks] = minutelyJob

	s.scheduler.Start()
	s.running = true

	if next, err := NextDailyRun(time.Now(), s.loc, s.dailyCron); err == nil {
		log.Printf("⏰ [SCHEDULER] Reminder scheduler started (daily batch at %s, interval %v)",
			next.Format(time.RFC3339), s.interval)
	}

	return nil
}

// Stop clears both timers. In-flight runs finish naturally; nothing is
// cancelled mid-run.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	log.Println("⏹️  [SCHEDULER] Stopping reminder scheduler...")
	s.running = false
	return s.scheduler.Shutdown()
}

// IsRunning reports whether the timers are armed.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunDeadlineChecks runs the full daily and minutely batches immediately.
// Operational/test trigger; bypasses the timers but not the run locks.
func (s *Scheduler) RunDeadlineChecks(ctx context.Context) {
	log.Println("🚀 [SCHEDULER] Manual deadline check run triggered")
	s.runLocked(ctx, JobDailyChecks, s.checker.RunDailyChecks)
	s.runLocked(ctx, JobMinutelyChecks, s.checker.RunMinutelyChecks)
}

// Status reports each registered job's next run time.
func (s *Scheduler) Status() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := make(map[string]time.Time, len(s.jobs))
	for name, job := range s.jobs {
		if next, err := job.NextRun(); err == nil {
			status[name] = next
		}
	}
	return status
}

// runLocked wraps one batch run in a distributed lock. The key includes a
// minute bucket, so a batch that finishes quickly does not block the next
// minute's tick while a hung batch keeps its slot until the TTL expires.
func (s *Scheduler) runLocked(ctx context.Context, name string, run func(context.Context)) {
	if s.redis == nil {
		run(ctx)
		return
	}

	lockKey := fmt.Sprintf("reminder-lock:%s:%d", name, time.Now().Unix()/60)

	acquired, err := s.redis.AcquireLock(ctx, lockKey, s.instanceID, s.lockTTL)
	if err != nil {
		log.Printf("❌ [SCHEDULER] Failed to acquire lock for %s: %v", name, err)
		return
	}
	if !acquired {
		log.Printf("⏭️  [SCHEDULER] %s already running elsewhere, skipping", name)
		return
	}
	defer func() {
		if _, err := s.redis.ReleaseLock(ctx, lockKey, s.instanceID); err != nil {
			log.Printf("⚠️  [SCHEDULER] Failed to release lock for %s: %v", name, err)
		}
	}()

	run(ctx)
}

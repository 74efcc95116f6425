package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one run of a scheduled task.
type Job func(ctx context.Context) error

// Scheduled runs Job on a cron schedule ("@every 5m", "0 7 * * 1", ...).
type Scheduled struct {
	Name       string
	Spec       string
	Job        Job
	RunAtStart bool
	Timeout    time.Duration // per run; defaults to 5m
}

func (w *Scheduled) Start(ctx context.Context) error {
	if w.Timeout <= 0 {
		w.Timeout = 5 * time.Minute
	}
	c := cron.New()
	if _, err := c.AddFunc(w.Spec, func() { w.run(ctx) }); err != nil {
		return fmt.Errorf("schedule %s: %w", w.Name, err)
	}
	slog.Info("scheduler: added job", "job", w.Name, "schedule", w.Spec)
	if w.RunAtStart {
		w.run(ctx)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (w *Scheduled) run(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, w.Timeout)
	defer cancel()
	start := time.Now()
	if err := w.Job(ctx); err != nil {
		slog.Error("scheduler: job failed", "job", w.Name, "error", err)
		return
	}
	slog.Debug("scheduler: job completed", "job", w.Name, "duration", time.Since(start))
}

// FeedRefresh adapts a feed to a Job.
func FeedRefresh(feed Refresher) Job {
	return func(ctx context.Context) error {
		feed.Refresh(ctx)
		return nil
	}
}

// SessionPurger removes expired login sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int, error)
}

// SessionCleanup adapts a session purger to a Job.
func SessionCleanup(p SessionPurger) Job {
	return func(ctx context.Context) error {
		_, err := p.PurgeExpiredSessions(ctx)
		return err
	}
}

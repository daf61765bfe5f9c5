// Package schedule runs the dispatch job once immediately and then once per
// day at a fixed wall-clock time, polling at coarse granularity.
package schedule

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/zlisto/financial-analyst-bot/pkg/adapter"
)

// Job is the unit of work the scheduler invokes.
type Job func(ctx context.Context) error

// Config holds scheduler settings.
type Config struct {
	// At is the daily trigger time as "HH:MM" local wall clock.
	At string

	// PollInterval is the trigger check granularity. Defaults to a minute.
	PollInterval time.Duration

	Logger *log.Logger
}

// Scheduler owns the single daily trigger. Missed triggers are skipped,
// never queued: the next run is always computed from the current time.
type Scheduler struct {
	expr   *cronexpr.Expression
	at     string
	poll   time.Duration
	logger *log.Logger
	job    Job
}

// New creates a scheduler for the given daily trigger time.
func New(cfg Config, job Job) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}
	expr, err := parseDaily(cfg.At)
	if err != nil {
		return nil, err
	}

	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[sched] ", log.LstdFlags)
	}

	return &Scheduler{expr: expr, at: cfg.At, poll: poll, logger: logger, job: job}, nil
}

// NextAfter returns the first trigger strictly after t.
func (s *Scheduler) NextAfter(t time.Time) time.Time {
	return s.expr.Next(t)
}

// Run executes the job immediately, then loops until ctx is canceled,
// firing the job whenever the daily trigger falls due. Interrupts are
// honored at the poll boundary only; an in-flight job runs to completion.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Printf("running initial job now; daily trigger at %s", s.at)
	s.runJob(ctx)

	next := s.NextAfter(time.Now())
	s.logger.Printf("next run scheduled for %s", next.Format("2006-01-02 15:04"))

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("scheduler stopped")
			return
		case now := <-ticker.C:
			if now.Before(next) {
				continue
			}
			s.runJob(ctx)
			next = s.NextAfter(time.Now())
			s.logger.Printf("next run scheduled for %s", next.Format("2006-01-02 15:04"))
		}
	}
}

// runJob invokes the job and swallows its error so the loop continues to
// the next trigger. The full error chain is logged.
func (s *Scheduler) runJob(ctx context.Context) {
	start := time.Now()
	s.logger.Printf("scheduled job started at %s", start.Format("2006-01-02 15:04:05"))

	if err := s.job(ctx); err != nil {
		s.logger.Printf("error in scheduled job: %v", err)
		if adapter.IsTransient(err) {
			s.logger.Printf("failure looks transient; the next trigger may succeed")
		}
		return
	}
	s.logger.Printf("job completed successfully in %s", time.Since(start).Round(time.Second))
}

// parseDaily converts "HH:MM" into a daily cron expression.
func parseDaily(at string) (*cronexpr.Expression, error) {
	parts := strings.SplitN(strings.TrimSpace(at), ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid schedule time %q: expected HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid schedule hour %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid schedule minute %q", parts[1])
	}

	expr, err := cronexpr.Parse(fmt.Sprintf("%d %d * * *", minute, hour))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule time %q: %w", at, err)
	}
	return expr, nil
}

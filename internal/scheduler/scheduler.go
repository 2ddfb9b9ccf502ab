// Package scheduler provides cron-based background job scheduling for the
// Arogya server, currently the nightly cleanup of rendered PDF reports.
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DailyCleanupExpr runs a job once a day at 03:00 server time, outside the
// hours a clinic would realistically request reports.
const DailyCleanupExpr = "0 3 * * *"

// Scheduler wraps a cron runner for recurring maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a scheduler. Panics inside jobs are
// recovered so a failing job never takes the server down.
func NewScheduler() *Scheduler {
	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules task under the given cron expression. It returns an error
// if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	if _, err := s.cron.AddFunc(expr, task); err != nil {
		return err
	}
	slog.Debug("Scheduler.AddJob scheduled job", "expr", expr)
	return nil
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Debug("Scheduler.Stop scheduler stopped")
}

// Package jobs runs the background maintenance work, currently the nightly
// archival sweep over expired blocked accounts.
package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
)

// Scheduler owns the cron runner for background jobs.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	accounts portssvc.AccountLifecycleSvc
	schedule string
}

// NewScheduler builds a scheduler with panic recovery around every job.
func NewScheduler(logger *slog.Logger, accounts portssvc.AccountLifecycleSvc, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger))),
		logger:   logger,
		accounts: accounts,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the cron runner in its own goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runArchivalSweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Scheduler started", slog.String("sweep_schedule", s.schedule))
	return nil
}

// Stop stops the cron runner and returns a context that completes when any
// in-flight job finishes.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) runArchivalSweep() {
	ctx := context.Background()
	s.logger.Info("Archival sweep starting")

	result, err := s.accounts.ArchiveExpiredBlocked(ctx, false)
	if err != nil {
		s.logger.Error("Archival sweep failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("Archival sweep completed", slog.Int("archived", len(result.AccountIDs)))
}

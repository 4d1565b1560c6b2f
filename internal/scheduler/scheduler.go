package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/config"
	"github.com/mamadbah2/salesdesk/internal/domain/models"
)

const (
	jobTimeout    = 2 * time.Minute
	sweepSchedule = "@every 10m"
)

// DigestSender delivers the weekly digest.
type DigestSender interface {
	Enabled() bool
	SendDigest(ctx context.Context) (models.DigestResult, error)
}

// SheetSyncer rewrites the export sheet.
type SheetSyncer interface {
	SyncSheet(ctx context.Context) (int, error)
}

// SessionSweeper expires idle form sessions.
type SessionSweeper interface {
	Sweep() int
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	digests  DigestSender
	sheets   SheetSyncer
	sessions SessionSweeper
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. sheets may be nil when the
// sheet export is not configured. Schedules run in loc.
func NewScheduler(cfg config.Config, loc *time.Location, digests DigestSender, sheets SheetSyncer, sessions SessionSweeper, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		digests:  digests,
		sheets:   sheets,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the jobs and starts the scheduler. It fails without
// starting anything when a schedule does not parse.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.digests != nil && s.digests.Enabled() {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendWeeklyDigest); err != nil {
			return fmt.Errorf("schedule weekly digest: %w", err)
		}
	}
	if s.sheets != nil {
		if _, err := s.cron.AddFunc(s.cfg.Sheets.SyncSchedule, s.syncSheet); err != nil {
			return fmt.Errorf("schedule sheet sync: %w", err)
		}
	}
	if s.sessions != nil {
		if _, err := s.cron.AddFunc(sweepSchedule, s.sweepSessions); err != nil {
			return fmt.Errorf("schedule session sweep: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyDigest() {
	s.logger.Info("sending weekly digest")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.digests.SendDigest(ctx)
	if err != nil {
		s.logger.Error("failed to send weekly digest", zap.Error(err))
		return
	}
	s.logger.Info("weekly digest sent successfully", zap.Int("messages", result.Messages))
}

func (s *Scheduler) syncSheet() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.sheets.SyncSheet(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("sheet sync timed out", zap.Duration("timeout", jobTimeout))
			return
		}
		s.logger.Error("failed to sync sheet", zap.Error(err))
		return
	}
	s.logger.Info("sheet synced", zap.Int("lines", n))
}

func (s *Scheduler) sweepSessions() {
	if n := s.sessions.Sweep(); n > 0 {
		s.logger.Debug("expired idle form sessions", zap.Int("count", n))
	}
}

// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/paisalens/paisalens/internal/domain/analysis"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	analysis *analysis.Service
	retain   time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. retain is how long analyses and
// their stored files are kept before the nightly purge removes them.
func NewScheduler(svc *analysis.Service, retain time.Duration, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		analysis: svc,
		retain:   retain,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Retention purge: runs daily at 2:00 AM
	_, err := s.cron.AddFunc("0 2 * * *", s.purgeExpiredAnalyses)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the retention purge (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.purgeExpiredAnalyses()
}

// purgeExpiredAnalyses removes analyses past the retention window together
// with their uploaded statements, reports and search entries.
func (s *Scheduler) purgeExpiredAnalyses() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retain)
	s.logger.Info("starting retention purge", slog.Time("cutoff", cutoff))

	purged, err := s.analysis.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention purge failed",
			slog.Int("purged_before_failure", purged),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Info("retention purge completed", slog.Int("analyses_purged", purged))
}

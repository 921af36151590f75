// Package scheduler periodically drains the CV queue and scores the pending
// evaluations of open postings.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spigell/cv-screener/internal/evaluation"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/queue"
	"go.uber.org/zap"
)

const DefaultInterval = 15 * time.Minute

type QueueRunner interface {
	Process(ctx context.Context, folderID *int64) (queue.Report, error)
}

type PostingRunner interface {
	ProcessOpen(ctx context.Context) ([]evaluation.Report, error)
}

// Scheduler wraps robfig/cron and runs one cycle per tick.
type Scheduler struct {
	cron     *cron.Cron
	queue    QueueRunner
	postings PostingRunner
	spec     string
	logger   *zap.Logger
}

// New creates a Scheduler that fires every interval. A non-positive interval
// falls back to DefaultInterval.
func New(q QueueRunner, postings PostingRunner, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		queue:    q,
		postings: postings,
		spec:     fmt.Sprintf("@every %s", interval),
		logger:   log.Named("scheduler"),
	}
}

// Start registers the job, starts the cron and runs one cycle right away
// without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go s.RunOnce(ctx)
	return nil
}

// Stop stops the cron and waits for a running cycle to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stopped before the running cycle finished")
		return
	}
	s.logger.Info("scheduler stopped")
}

// RunOnce drains the queue into no folder and then processes open postings.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Debug("cycle started")

	report, err := s.queue.Process(ctx, nil)
	switch {
	case errors.Is(err, queue.ErrAlreadyProcessing):
		s.logger.Debug("queue is being processed elsewhere, skipping")
	case err != nil:
		s.logger.Error("processing the queue", zap.Error(err))
	case report.Processed > 0:
		s.logger.Info("queue processed",
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", report.Failed),
		)
	}

	if ctx.Err() != nil {
		return
	}

	reports, err := s.postings.ProcessOpen(ctx)
	if err != nil {
		s.logger.Error("processing open postings", zap.Error(err))
		return
	}
	for _, r := range reports {
		s.logger.Info("posting processed",
			zap.Int64(logger.FieldPosting, r.PostingID),
			zap.Int("scored", r.Scored),
			zap.Int("failed", r.Failed),
		)
	}

	s.logger.Debug("cycle complete")
}

package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/config"
	"github.com/prepflow/backoffice/internal/service/reporting"
)

// Scheduler runs the nightly valuation snapshot for every owner.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	cfg          config.ValuationConfig
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance in the configured timezone.
func NewScheduler(cfg config.ValuationConfig, reportingSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the valuation job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.snapshotValuations); err != nil {
		s.logger.Error("failed to schedule valuation snapshot", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) snapshotValuations() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	owners, err := s.reportingSvc.Owners(ctx)
	if err != nil {
		s.logger.Error("failed to list owners for valuation snapshot", zap.Error(err))
		return
	}

	for _, owner := range owners {
		snapshot, err := s.reportingSvc.SaveValuationSnapshot(ctx, owner)
		if err != nil {
			s.logger.Error("failed to save valuation snapshot",
				zap.String("owner", owner), zap.Error(err))
			continue
		}
		s.logger.Info("valuation snapshot saved",
			zap.String("owner", owner),
			zap.Float64("totalValue", snapshot.TotalValue))
	}
}

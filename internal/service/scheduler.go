package service

import (
	"context"
	"time"

	"prop-challenge/config"
	"prop-challenge/pkg/logger"
	"prop-challenge/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the periodic leaderboard snapshot. Challenge
// evaluation stays strictly request-driven; the scheduler only aggregates
// persisted results.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
}

type schedulerService struct {
	cfg         *config.Config
	log         *logger.Logger
	leaderboard LeaderboardService
	cron        *cron.Cron
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, leaderboard LeaderboardService) SchedulerService {
	return &schedulerService{
		cfg:         cfg,
		log:         log,
		leaderboard: leaderboard,
		cron:        cron.New(),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Leaderboard.SnapshotCron, func() {
		month := utils.MonthKey(time.Now())
		if err := s.leaderboard.Snapshot(ctx, month); err != nil {
			s.log.Error("Leaderboard snapshot failed",
				logger.StringField("month", month),
				logger.ErrorField(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started", logger.StringField("snapshot_cron", s.cfg.Leaderboard.SnapshotCron))
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("Scheduler stopped")
}

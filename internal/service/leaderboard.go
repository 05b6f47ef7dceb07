package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"prop-challenge/config"
	"prop-challenge/internal/model"
	"prop-challenge/internal/repository"
	"prop-challenge/pkg/logger"
	"prop-challenge/pkg/utils"

	"github.com/google/uuid"
)

// LeaderboardService ranks users for a month by their best challenge's
// realized profit percentage. Snapshots are rebuilt by the scheduler and on
// demand; only persisted balances are read, so no price lookups happen here.
type LeaderboardService interface {
	Snapshot(ctx context.Context, month string) error
	ListMonth(ctx context.Context, month string) ([]model.LeaderboardEntry, error)
	UserRank(ctx context.Context, userID, month string) (*model.LeaderboardEntry, error)
}

type leaderboardService struct {
	cfg             *config.Config
	log             *logger.Logger
	challengeRepo   repository.ChallengeRepository
	leaderboardRepo repository.LeaderboardRepository
	uow             repository.UnitOfWork
}

func NewLeaderboardService(
	cfg *config.Config,
	log *logger.Logger,
	challengeRepo repository.ChallengeRepository,
	leaderboardRepo repository.LeaderboardRepository,
	uow repository.UnitOfWork,
) LeaderboardService {
	return &leaderboardService{
		cfg:             cfg,
		log:             log,
		challengeRepo:   challengeRepo,
		leaderboardRepo: leaderboardRepo,
		uow:             uow,
	}
}

func (s *leaderboardService) Snapshot(ctx context.Context, month string) error {
	challenges, err := s.challengeRepo.ListCompletedSince(ctx, month)
	if err != nil {
		return err
	}

	entries := rankChallenges(challenges, month, s.cfg.Leaderboard.TopN)

	err = s.uow.Run(func(opts ...utils.DBOption) error {
		return s.leaderboardRepo.ReplaceMonth(ctx, month, entries, opts...)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "Leaderboard snapshot written",
		logger.StringField("month", month),
		logger.IntField("entries", len(entries)))
	return nil
}

func (s *leaderboardService) ListMonth(ctx context.Context, month string) ([]model.LeaderboardEntry, error) {
	if month == "" {
		month = utils.MonthKey(time.Now())
	}
	return s.leaderboardRepo.ListMonth(ctx, month, s.cfg.Leaderboard.TopN)
}

func (s *leaderboardService) UserRank(ctx context.Context, userID, month string) (*model.LeaderboardEntry, error) {
	if month == "" {
		month = utils.MonthKey(time.Now())
	}
	entry, err := s.leaderboardRepo.GetUserRank(ctx, userID, month)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// rankChallenges keeps each user's best profit percentage and orders the
// result descending.
func rankChallenges(challenges []model.Challenge, month string, topN int) []model.LeaderboardEntry {
	type best struct {
		username string
		pct      float64
	}
	bestByUser := make(map[string]best)

	for i := range challenges {
		c := &challenges[i]
		pct := c.ProfitPercentage()
		cur, ok := bestByUser[c.UserID]
		if !ok || pct > cur.pct {
			bestByUser[c.UserID] = best{username: c.User.Username, pct: pct}
		}
	}

	entries := make([]model.LeaderboardEntry, 0, len(bestByUser))
	for userID, b := range bestByUser {
		entries = append(entries, model.LeaderboardEntry{
			ID:               uuid.NewString(),
			UserID:           userID,
			Username:         b.username,
			ProfitPercentage: b.pct,
			Month:            month,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ProfitPercentage > entries[j].ProfitPercentage
	})

	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prop-challenge/config"
	"prop-challenge/internal/model"
	"prop-challenge/internal/repository"
	"prop-challenge/pkg/logger"
	"prop-challenge/pkg/utils"

	"github.com/google/uuid"
)

// planBalances maps plan types to the virtual capital they grant.
var planBalances = map[model.PlanType]float64{
	model.PlanStarter: 10000,
	model.PlanPro:     50000,
	model.PlanElite:   100000,
}

// ChallengeService provisions challenges and serves read queries over them.
type ChallengeService interface {
	Provision(ctx context.Context, userID string, plan model.PlanType, method model.PaymentMethod, opts ...utils.DBOption) (*model.Challenge, error)
	ListByUser(ctx context.Context, userID string) ([]model.Challenge, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*model.Challenge, error)
}

type challengeService struct {
	cfg           *config.Config
	log           *logger.Logger
	challengeRepo repository.ChallengeRepository
	now           func() time.Time
}

func NewChallengeService(cfg *config.Config, log *logger.Logger, challengeRepo repository.ChallengeRepository) ChallengeService {
	return &challengeService{
		cfg:           cfg,
		log:           log,
		challengeRepo: challengeRepo,
		now:           time.Now,
	}
}

// Provision creates a paid, active challenge for the plan. Risk limits come
// from config and are frozen on the instance; the daily baseline starts at
// the initial balance.
func (s *challengeService) Provision(ctx context.Context, userID string, plan model.PlanType, method model.PaymentMethod, opts ...utils.DBOption) (*model.Challenge, error) {
	balance, ok := planBalances[plan]
	if !ok {
		return nil, fmt.Errorf("unknown plan type: %s", plan)
	}

	now := s.now().UTC()
	challenge := &model.Challenge{
		ID:                uuid.NewString(),
		UserID:            userID,
		PlanType:          plan,
		InitialBalance:    balance,
		CurrentBalance:    balance,
		Status:            model.ChallengeStatusActive,
		MaxDailyLossPct:   s.cfg.Challenge.MaxDailyLossPct,
		MaxTotalLossPct:   s.cfg.Challenge.MaxTotalLossPct,
		ProfitTargetPct:   s.cfg.Challenge.ProfitTargetPct,
		DailyStartBalance: balance,
		LastResetDate:     &now,
		StartDate:         now,
		EndDate:           now.AddDate(0, 0, s.cfg.Challenge.DurationDays),
		PaymentStatus:     model.PaymentStatusCompleted,
		PaymentMethod:     string(method),
	}

	if err := s.challengeRepo.Create(ctx, challenge, opts...); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Challenge provisioned",
		logger.StringField("challenge_id", challenge.ID),
		logger.StringField("user_id", userID),
		logger.StringField("plan", string(plan)),
		logger.Float64Field("initial_balance", balance))

	return challenge, nil
}

func (s *challengeService) ListByUser(ctx context.Context, userID string) ([]model.Challenge, error) {
	return s.challengeRepo.ListByUser(ctx, userID)
}

func (s *challengeService) GetByIDForUser(ctx context.Context, id, userID string) (*model.Challenge, error) {
	challenge, err := s.challengeRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return challenge, nil
}

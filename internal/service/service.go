package service

import (
	"prop-challenge/config"
	"prop-challenge/internal/repository"
	"prop-challenge/pkg/cache"
	"prop-challenge/pkg/logger"
)

type Service struct {
	AuthService        AuthService
	ChallengeService   ChallengeService
	TradingService     TradingService
	PaymentService     PaymentService
	LeaderboardService LeaderboardService
	SchedulerService   SchedulerService
	PriceOracle        PriceOracle
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
) *Service {
	oracle := NewPriceOracle(cfg, log, inmemoryCache, repo.YahooQuoteRepo, repo.CasablancaQuoteRepo)
	evaluator := NewEvaluationService(log)

	authService := NewAuthService(cfg, log, repo.UserRepo)
	challengeService := NewChallengeService(cfg, log, repo.ChallengeRepo)
	tradingService := NewTradingService(cfg, log, repo.ChallengeRepo, repo.PositionRepo, repo.UnitOfWork, oracle, evaluator)
	paymentService := NewPaymentService(cfg, log, repo.PaymentRepo, challengeService, repo.UnitOfWork)
	leaderboardService := NewLeaderboardService(cfg, log, repo.ChallengeRepo, repo.LeaderboardRepo, repo.UnitOfWork)
	schedulerService := NewSchedulerService(cfg, log, leaderboardService)

	return &Service{
		AuthService:        authService,
		ChallengeService:   challengeService,
		TradingService:     tradingService,
		PaymentService:     paymentService,
		LeaderboardService: leaderboardService,
		SchedulerService:   schedulerService,
		PriceOracle:        oracle,
	}
}

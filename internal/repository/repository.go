package repository

import (
	"prop-challenge/config"
	"prop-challenge/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	UserRepo            UserRepository
	ChallengeRepo       ChallengeRepository
	PositionRepo        PositionRepository
	PaymentRepo         PaymentRepository
	LeaderboardRepo     LeaderboardRepository
	YahooQuoteRepo      QuoteRepository
	CasablancaQuoteRepo QuoteRepository
	UnitOfWork          UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{
		UserRepo:            NewUserRepository(db),
		ChallengeRepo:       NewChallengeRepository(db),
		PositionRepo:        NewPositionRepository(db),
		PaymentRepo:         NewPaymentRepository(db),
		LeaderboardRepo:     NewLeaderboardRepository(db),
		YahooQuoteRepo:      NewYahooQuoteRepository(cfg, log),
		CasablancaQuoteRepo: NewCasablancaQuoteRepository(cfg, log),
		UnitOfWork:          NewUnitOfWork(db),
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"prop-challenge/config"
	"prop-challenge/internal/dto"
	"prop-challenge/internal/model"
	"prop-challenge/internal/repository"
	"prop-challenge/pkg/logger"
	"prop-challenge/pkg/utils"

	"github.com/google/uuid"
)

// TradingService owns trade execution, position closure and the
// refresh-and-evaluate cycle that keeps challenge status current.
type TradingService interface {
	ExecuteTrade(ctx context.Context, userID string, req dto.ExecuteTradeRequest) (*dto.ExecuteTradeResponse, error)
	ClosePosition(ctx context.Context, userID, positionID string, exitPrice float64) (*dto.ClosePositionResponse, error)
	GetChallengeStatus(ctx context.Context, userID, challengeID string) (*dto.ChallengeStatusResponse, error)
	// RefreshAndEvaluate runs one evaluation cycle and returns the challenge
	// together with the equity the rules were judged against.
	RefreshAndEvaluate(ctx context.Context, challengeID string) (*model.Challenge, float64, error)
	ListChallengePositions(ctx context.Context, userID, challengeID string) (*dto.PositionListResponse, error)
	ListUserPositions(ctx context.Context, userID string) (*dto.PositionListResponse, error)
	ListMarkets() dto.MarketListResponse
}

type tradingService struct {
	cfg           *config.Config
	log           *logger.Logger
	challengeRepo repository.ChallengeRepository
	positionRepo  repository.PositionRepository
	uow           repository.UnitOfWork
	oracle        PriceOracle
	evaluator     EvaluationService
	now           func() time.Time
}

func NewTradingService(
	cfg *config.Config,
	log *logger.Logger,
	challengeRepo repository.ChallengeRepository,
	positionRepo repository.PositionRepository,
	uow repository.UnitOfWork,
	oracle PriceOracle,
	evaluator EvaluationService,
) TradingService {
	return &tradingService{
		cfg:           cfg,
		log:           log,
		challengeRepo: challengeRepo,
		positionRepo:  positionRepo,
		uow:           uow,
		oracle:        oracle,
		evaluator:     evaluator,
		now:           time.Now,
	}
}

func (s *tradingService) ExecuteTrade(ctx context.Context, userID string, req dto.ExecuteTradeRequest) (*dto.ExecuteTradeResponse, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	challenge, err := s.challengeRepo.GetByIDForUser(ctx, req.ChallengeID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if challenge.IsTerminal() || challenge.PaymentStatus != model.PaymentStatusCompleted {
		return nil, ErrChallengeNotActive
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	// A trade needs a real entry price; no fallback is synthesized here.
	quote, err := s.oracle.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	position := &model.Position{
		ID:          uuid.NewString(),
		ChallengeID: challenge.ID,
		UserID:      userID,
		Symbol:      symbol,
		Direction:   model.TradeDirection(strings.ToUpper(req.Direction)),
		Quantity:    req.Quantity,
		EntryPrice:  quote.Price,
		OpenedAt:    s.now().UTC(),
	}

	if err := s.positionRepo.Create(ctx, position); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Trade executed",
		logger.StringField("challenge_id", challenge.ID),
		logger.StringField("symbol", position.Symbol),
		logger.StringField("direction", string(position.Direction)),
		logger.IntField("quantity", position.Quantity),
		logger.Float64Field("entry_price", position.EntryPrice))

	return &dto.ExecuteTradeResponse{
		Position:  &dto.PositionView{Position: *position},
		Challenge: challenge,
	}, nil
}

// ClosePosition freezes the position's exit price and realized P&L, credits
// the challenge balance, and re-evaluates the challenge — all in a single
// transaction under a challenge row lock so concurrent closes on the same
// challenge serialize and both credits survive.
func (s *tradingService) ClosePosition(ctx context.Context, userID, positionID string, exitPrice float64) (*dto.ClosePositionResponse, error) {
	if !utils.IsFinitePositive(exitPrice) {
		return nil, ErrInvalidExitPrice
	}

	var (
		closedPosition *model.Position
		challenge      *model.Challenge
	)

	err := s.uow.Run(func(opts ...utils.DBOption) error {
		position, err := s.positionRepo.GetByIDForUser(ctx, positionID, userID, opts...)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		challenge, err = s.challengeRepo.GetByIDLocked(ctx, position.ChallengeID, opts...)
		if err != nil {
			return err
		}

		// Re-read under the lock: a racing close of the same position may
		// have committed while this transaction waited on the challenge row,
		// and the pre-lock snapshot would not see it.
		position, err = s.positionRepo.GetByIDForUser(ctx, positionID, userID, opts...)
		if err != nil {
			return err
		}

		if position.Closed {
			return ErrPositionAlreadyClosed
		}

		realized := position.UnrealizedPnL(exitPrice)
		exit := exitPrice
		position.ExitPrice = &exit
		position.ProfitLoss = realized
		position.Closed = true

		if err := s.positionRepo.Update(ctx, position, opts...); err != nil {
			return err
		}

		challenge.CurrentBalance += realized

		if _, err := s.evaluateLocked(ctx, challenge, opts...); err != nil {
			return err
		}

		closedPosition = position
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Position closed",
		logger.StringField("position_id", closedPosition.ID),
		logger.StringField("challenge_id", challenge.ID),
		logger.Float64Field("exit_price", exitPrice),
		logger.Float64Field("profit_loss", closedPosition.ProfitLoss))

	return &dto.ClosePositionResponse{
		Position:  &dto.PositionView{Position: *closedPosition},
		Challenge: challenge,
	}, nil
}

// RefreshAndEvaluate runs one full evaluation cycle: current prices for all
// open positions, equity, rule evaluation, persisted transition. Terminal
// challenges skip the transaction and rule evaluation; their equity is still
// valued so callers report the same figure. Safe to call redundantly.
func (s *tradingService) RefreshAndEvaluate(ctx context.Context, challengeID string) (*model.Challenge, float64, error) {
	current, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	if current.IsTerminal() {
		openPositions, err := s.positionRepo.ListOpenByChallenge(ctx, challengeID)
		if err != nil {
			return nil, 0, err
		}
		return current, current.CurrentBalance + s.unrealizedTotal(ctx, openPositions), nil
	}

	var (
		challenge *model.Challenge
		equity    float64
	)
	err = s.uow.Run(func(opts ...utils.DBOption) error {
		challenge, err = s.challengeRepo.GetByIDLocked(ctx, challengeID, opts...)
		if err != nil {
			return err
		}
		equity, err = s.evaluateLocked(ctx, challenge, opts...)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return challenge, equity, nil
}

// evaluateLocked recomputes equity and applies the evaluation rules for a
// challenge already locked in the surrounding transaction, persisting both
// a status transition and any daily-baseline reset. It returns the equity
// the rules were judged against.
func (s *tradingService) evaluateLocked(ctx context.Context, challenge *model.Challenge, opts ...utils.DBOption) (float64, error) {
	if challenge.IsTerminal() {
		return challenge.CurrentBalance, s.challengeRepo.Update(ctx, challenge, opts...)
	}

	openPositions, err := s.positionRepo.ListOpenByChallenge(ctx, challenge.ID, opts...)
	if err != nil {
		return 0, err
	}

	equity := challenge.CurrentBalance + s.unrealizedTotal(ctx, openPositions)

	if _, err := s.evaluator.Evaluate(challenge, equity, s.now().UTC()); err != nil {
		return 0, err
	}

	return equity, s.challengeRepo.Update(ctx, challenge, opts...)
}

// unrealizedTotal sums open-position P&L against current prices. A position
// whose price cannot be resolved contributes zero rather than blocking the
// evaluation.
func (s *tradingService) unrealizedTotal(ctx context.Context, positions []model.Position) float64 {
	quotes := s.oracle.GetQuotes(ctx, openSymbols(positions))

	total := 0.0
	for i := range positions {
		quote, ok := quotes[positions[i].Symbol]
		if !ok {
			continue
		}
		total += positions[i].UnrealizedPnL(quote.Price)
	}
	return total
}

func (s *tradingService) GetChallengeStatus(ctx context.Context, userID, challengeID string) (*dto.ChallengeStatusResponse, error) {
	if _, err := s.challengeRepo.GetByIDForUser(ctx, challengeID, userID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	challenge, equity, err := s.RefreshAndEvaluate(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	summary := dto.ProfitLossSummary{
		TotalPnL: equity - challenge.InitialBalance,
	}
	if challenge.InitialBalance > 0 {
		summary.ProfitPercentage = summary.TotalPnL / challenge.InitialBalance * 100
	}

	return &dto.ChallengeStatusResponse{
		Challenge:  challenge,
		Equity:     equity,
		ProfitLoss: summary,
	}, nil
}

func (s *tradingService) ListChallengePositions(ctx context.Context, userID, challengeID string) (*dto.PositionListResponse, error) {
	if _, err := s.challengeRepo.GetByIDForUser(ctx, challengeID, userID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Status queries refresh the challenge first.
	if _, _, err := s.RefreshAndEvaluate(ctx, challengeID); err != nil {
		return nil, err
	}

	positions, err := s.positionRepo.ListByChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	return s.annotate(ctx, positions), nil
}

func (s *tradingService) ListUserPositions(ctx context.Context, userID string) (*dto.PositionListResponse, error) {
	positions, err := s.positionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, positions), nil
}

// annotate attaches current prices and unrealized P&L to open positions.
func (s *tradingService) annotate(ctx context.Context, positions []model.Position) *dto.PositionListResponse {
	quotes := s.oracle.GetQuotes(ctx, openSymbols(positions))

	views := make([]dto.PositionView, 0, len(positions))
	for i := range positions {
		view := dto.PositionView{Position: positions[i]}
		if !positions[i].Closed {
			if quote, ok := quotes[positions[i].Symbol]; ok {
				price := quote.Price
				pnl := positions[i].UnrealizedPnL(price)
				view.CurrentPrice = &price
				view.UnrealizedPnL = &pnl
			}
		}
		views = append(views, view)
	}

	return &dto.PositionListResponse{
		Positions: views,
		Count:     len(views),
	}
}

func openSymbols(positions []model.Position) []string {
	symbols := make([]string, 0, len(positions))
	for i := range positions {
		if !positions[i].Closed {
			symbols = append(symbols, positions[i].Symbol)
		}
	}
	return symbols
}

func (s *tradingService) ListMarkets() dto.MarketListResponse {
	markets := []dto.Market{
		{Symbol: "XAUUSD", Name: "Gold (XAU/USD)", Type: "commodity", Exchange: "FOREX"},
		{Symbol: "EURUSD=X", Name: "EUR/USD", Type: "forex", Exchange: "FOREX"},
		{Symbol: "GBPUSD=X", Name: "GBP/USD", Type: "forex", Exchange: "FOREX"},
		{Symbol: "USDJPY=X", Name: "USD/JPY", Type: "forex", Exchange: "FOREX"},
		{Symbol: "AAPL", Name: "Apple Inc.", Type: "stock", Exchange: "NASDAQ"},
		{Symbol: "TSLA", Name: "Tesla Inc.", Type: "stock", Exchange: "NASDAQ"},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Type: "stock", Exchange: "NASDAQ"},
		{Symbol: "NVDA", Name: "NVIDIA Corp", Type: "stock", Exchange: "NASDAQ"},
		{Symbol: "BTC-USD", Name: "Bitcoin USD", Type: "crypto", Exchange: "CRYPTO"},
		{Symbol: "ETH-USD", Name: "Ethereum USD", Type: "crypto", Exchange: "CRYPTO"},
		{Symbol: "SOL-USD", Name: "Solana USD", Type: "crypto", Exchange: "CRYPTO"},
		{Symbol: "IAM.CS", Name: "Maroc Telecom", Type: "stock", Exchange: "Casablanca Stock Exchange"},
		{Symbol: "ATW.CS", Name: "Attijariwafa Bank", Type: "stock", Exchange: "Casablanca Stock Exchange"},
		{Symbol: "BCP.CS", Name: "Banque Centrale Populaire", Type: "stock", Exchange: "Casablanca Stock Exchange"},
		{Symbol: "MNG.CS", Name: "Managem SA", Type: "stock", Exchange: "Casablanca Stock Exchange"},
		{Symbol: "CIM.CS", Name: "Ciments du Maroc", Type: "stock", Exchange: "Casablanca Stock Exchange"},
		{Symbol: "BOA.CS", Name: "Bank Of Africa", Type: "stock", Exchange: "Casablanca Stock Exchange"},
	}

	return dto.MarketListResponse{
		Markets: markets,
		Count:   len(markets),
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"prop-challenge/config"
	"prop-challenge/internal/dto"
	"prop-challenge/internal/model"
	"prop-challenge/internal/repository"
	"prop-challenge/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChallengeRepo struct {
	challenges map[string]*model.Challenge
	completed  []model.Challenge
	// onLock runs after the row lock is granted, standing in for work another
	// transaction committed while this one was waiting.
	onLock func()
}

func newFakeChallengeRepo(challenges ...*model.Challenge) *fakeChallengeRepo {
	repo := &fakeChallengeRepo{challenges: map[string]*model.Challenge{}}
	for _, c := range challenges {
		repo.challenges[c.ID] = c
	}
	return repo
}

func (f *fakeChallengeRepo) Create(ctx context.Context, challenge *model.Challenge, opts ...utils.DBOption) error {
	f.challenges[challenge.ID] = challenge
	return nil
}

func (f *fakeChallengeRepo) GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.Challenge, error) {
	challenge, ok := f.challenges[id]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	copied := *challenge
	return &copied, nil
}

func (f *fakeChallengeRepo) GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Challenge, error) {
	challenge, ok := f.challenges[id]
	if !ok || challenge.UserID != userID {
		return nil, repository.ErrRecordNotFound
	}
	copied := *challenge
	return &copied, nil
}

func (f *fakeChallengeRepo) GetByIDLocked(ctx context.Context, id string, opts ...utils.DBOption) (*model.Challenge, error) {
	if f.onLock != nil {
		f.onLock()
	}
	return f.GetByID(ctx, id, opts...)
}

func (f *fakeChallengeRepo) Update(ctx context.Context, challenge *model.Challenge, opts ...utils.DBOption) error {
	copied := *challenge
	f.challenges[challenge.ID] = &copied
	return nil
}

func (f *fakeChallengeRepo) ListByUser(ctx context.Context, userID string) ([]model.Challenge, error) {
	var out []model.Challenge
	for _, c := range f.challenges {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChallengeRepo) ListCompletedSince(ctx context.Context, month string) ([]model.Challenge, error) {
	return f.completed, nil
}

type fakePositionRepo struct {
	positions map[string]*model.Position
}

func newFakePositionRepo(positions ...*model.Position) *fakePositionRepo {
	repo := &fakePositionRepo{positions: map[string]*model.Position{}}
	for _, p := range positions {
		repo.positions[p.ID] = p
	}
	return repo
}

func (f *fakePositionRepo) Create(ctx context.Context, position *model.Position, opts ...utils.DBOption) error {
	copied := *position
	f.positions[position.ID] = &copied
	return nil
}

func (f *fakePositionRepo) GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.Position, error) {
	position, ok := f.positions[id]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	copied := *position
	return &copied, nil
}

func (f *fakePositionRepo) GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Position, error) {
	position, ok := f.positions[id]
	if !ok || position.UserID != userID {
		return nil, repository.ErrRecordNotFound
	}
	copied := *position
	return &copied, nil
}

func (f *fakePositionRepo) Update(ctx context.Context, position *model.Position, opts ...utils.DBOption) error {
	stored, ok := f.positions[position.ID]
	if !ok {
		return repository.ErrRecordNotFound
	}
	stored.ExitPrice = position.ExitPrice
	stored.ProfitLoss = position.ProfitLoss
	stored.Closed = position.Closed
	return nil
}

func (f *fakePositionRepo) ListByChallenge(ctx context.Context, challengeID string) ([]model.Position, error) {
	var out []model.Position
	for _, p := range f.positions {
		if p.ChallengeID == challengeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePositionRepo) ListOpenByChallenge(ctx context.Context, challengeID string, opts ...utils.DBOption) ([]model.Position, error) {
	var out []model.Position
	for _, p := range f.positions {
		if p.ChallengeID == challengeID && !p.Closed {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePositionRepo) ListByUser(ctx context.Context, userID string) ([]model.Position, error) {
	var out []model.Position
	for _, p := range f.positions {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// fakeUnitOfWork runs the function directly; transactional scoping is the
// real implementation's concern.
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

type fakeOracle struct {
	prices map[string]float64
}

func (f *fakeOracle) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return nil, ErrPriceUnavailable
	}
	return &dto.Quote{Symbol: symbol, Price: price, Timestamp: time.Now().UTC()}, nil
}

func (f *fakeOracle) GetQuotes(ctx context.Context, symbols []string) map[string]*dto.Quote {
	result := make(map[string]*dto.Quote, len(symbols))
	for _, symbol := range symbols {
		if price, ok := f.prices[symbol]; ok {
			result[symbol] = &dto.Quote{Symbol: symbol, Price: price, Timestamp: time.Now().UTC()}
		}
	}
	return result
}

type tradingFixture struct {
	svc           TradingService
	challengeRepo *fakeChallengeRepo
	positionRepo  *fakePositionRepo
	oracle        *fakeOracle
	now           time.Time
}

func newTradingFixture(t *testing.T, challenges []*model.Challenge, positions []*model.Position, prices map[string]float64) *tradingFixture {
	t.Helper()

	challengeRepo := newFakeChallengeRepo(challenges...)
	positionRepo := newFakePositionRepo(positions...)
	oracle := &fakeOracle{prices: prices}
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	svc := NewTradingService(
		&config.Config{},
		newTestLogger(),
		challengeRepo,
		positionRepo,
		fakeUnitOfWork{},
		oracle,
		NewEvaluationService(newTestLogger()),
	).(*tradingService)
	svc.now = func() time.Time { return now }

	return &tradingFixture{
		svc:           svc,
		challengeRepo: challengeRepo,
		positionRepo:  positionRepo,
		oracle:        oracle,
		now:           now,
	}
}

func paidChallenge(id, userID string) *model.Challenge {
	baseline := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return &model.Challenge{
		ID:                id,
		UserID:            userID,
		PlanType:          model.PlanStarter,
		InitialBalance:    10000,
		CurrentBalance:    10000,
		DailyStartBalance: 10000,
		LastResetDate:     &baseline,
		Status:            model.ChallengeStatusActive,
		MaxDailyLossPct:   5,
		MaxTotalLossPct:   10,
		ProfitTargetPct:   10,
		PaymentStatus:     model.PaymentStatusCompleted,
		StartDate:         baseline,
		EndDate:           baseline.AddDate(0, 0, 30),
	}
}

func TestTradingService_ExecuteTrade(t *testing.T) {
	fx := newTradingFixture(t,
		[]*model.Challenge{paidChallenge("ch-1", "user-1")},
		nil,
		map[string]float64{"BTCUSD": 50},
	)

	resp, err := fx.svc.ExecuteTrade(context.Background(), "user-1", dto.ExecuteTradeRequest{
		ChallengeID: "ch-1",
		Symbol:      "btcusd",
		Direction:   "buy",
		Quantity:    100,
	})

	require.NoError(t, err)
	assert.Equal(t, "BTCUSD", resp.Position.Symbol)
	assert.Equal(t, model.DirectionBuy, resp.Position.Direction)
	assert.Equal(t, 50.0, resp.Position.EntryPrice)
	assert.False(t, resp.Position.Closed)
	assert.Len(t, fx.positionRepo.positions, 1)
}

func TestTradingService_ExecuteTradeValidation(t *testing.T) {
	challenge := paidChallenge("ch-1", "user-1")
	terminal := paidChallenge("ch-terminal", "user-1")
	terminal.Status = model.ChallengeStatusFailed
	unpaid := paidChallenge("ch-unpaid", "user-1")
	unpaid.PaymentStatus = model.PaymentStatusPending

	fx := newTradingFixture(t,
		[]*model.Challenge{challenge, terminal, unpaid},
		nil,
		map[string]float64{"BTCUSD": 50},
	)

	tests := []struct {
		name    string
		userID  string
		req     dto.ExecuteTradeRequest
		wantErr error
	}{
		{
			name:    "zero quantity",
			userID:  "user-1",
			req:     dto.ExecuteTradeRequest{ChallengeID: "ch-1", Symbol: "BTCUSD", Direction: "BUY"},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "unknown challenge",
			userID:  "user-1",
			req:     dto.ExecuteTradeRequest{ChallengeID: "nope", Symbol: "BTCUSD", Direction: "BUY", Quantity: 1},
			wantErr: ErrNotFound,
		},
		{
			name:    "challenge owned by someone else",
			userID:  "user-2",
			req:     dto.ExecuteTradeRequest{ChallengeID: "ch-1", Symbol: "BTCUSD", Direction: "BUY", Quantity: 1},
			wantErr: ErrNotFound,
		},
		{
			name:    "terminal challenge",
			userID:  "user-1",
			req:     dto.ExecuteTradeRequest{ChallengeID: "ch-terminal", Symbol: "BTCUSD", Direction: "BUY", Quantity: 1},
			wantErr: ErrChallengeNotActive,
		},
		{
			name:    "unpaid challenge",
			userID:  "user-1",
			req:     dto.ExecuteTradeRequest{ChallengeID: "ch-unpaid", Symbol: "BTCUSD", Direction: "BUY", Quantity: 1},
			wantErr: ErrChallengeNotActive,
		},
		{
			name:    "no price for symbol",
			userID:  "user-1",
			req:     dto.ExecuteTradeRequest{ChallengeID: "ch-1", Symbol: "UNPRICED", Direction: "BUY", Quantity: 1},
			wantErr: ErrPriceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.ExecuteTrade(context.Background(), tt.userID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, fx.positionRepo.positions, "rejected trades must not persist positions")
}

func TestTradingService_ClosePositionCreditsBalance(t *testing.T) {
	position := &model.Position{
		ID:          "pos-1",
		ChallengeID: "ch-1",
		UserID:      "user-1",
		Symbol:      "BTCUSD",
		Direction:   model.DirectionBuy,
		Quantity:    100,
		EntryPrice:  50,
	}
	fx := newTradingFixture(t,
		[]*model.Challenge{paidChallenge("ch-1", "user-1")},
		[]*model.Position{position},
		map[string]float64{"BTCUSD": 56},
	)

	resp, err := fx.svc.ClosePosition(context.Background(), "user-1", "pos-1", 56)

	require.NoError(t, err)
	assert.True(t, resp.Position.Closed)
	require.NotNil(t, resp.Position.ExitPrice)
	assert.Equal(t, 56.0, *resp.Position.ExitPrice)
	assert.Equal(t, 600.0, resp.Position.ProfitLoss)
	assert.Equal(t, 10600.0, resp.Challenge.CurrentBalance)
	assert.Equal(t, model.ChallengeStatusActive, resp.Challenge.Status)

	stored, err := fx.challengeRepo.GetByID(context.Background(), "ch-1")
	require.NoError(t, err)
	assert.Equal(t, 10600.0, stored.CurrentBalance)
}

func TestTradingService_ClosePositionErrors(t *testing.T) {
	closed := &model.Position{
		ID:          "pos-closed",
		ChallengeID: "ch-1",
		UserID:      "user-1",
		Symbol:      "BTCUSD",
		Direction:   model.DirectionBuy,
		Quantity:    10,
		EntryPrice:  50,
		Closed:      true,
	}
	fx := newTradingFixture(t,
		[]*model.Challenge{paidChallenge("ch-1", "user-1")},
		[]*model.Position{closed},
		map[string]float64{"BTCUSD": 56},
	)

	_, err := fx.svc.ClosePosition(context.Background(), "user-1", "pos-closed", 56)
	assert.ErrorIs(t, err, ErrPositionAlreadyClosed)

	_, err = fx.svc.ClosePosition(context.Background(), "user-1", "missing", 56)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fx.svc.ClosePosition(context.Background(), "user-2", "pos-closed", 56)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fx.svc.ClosePosition(context.Background(), "user-1", "pos-closed", 0)
	assert.ErrorIs(t, err, ErrInvalidExitPrice)

	_, err = fx.svc.ClosePosition(context.Background(), "user-1", "pos-closed", -5)
	assert.ErrorIs(t, err, ErrInvalidExitPrice)
}

func TestTradingService_ClosePositionRacingCloseIsRejected(t *testing.T) {
	// Two closes race on the same position. The loser reads the position as
	// open, then blocks on the challenge row lock; by the time the lock is
	// granted the winner has committed its close and credited +600. The loser
	// must see the committed state, reject the close, and leave the balance
	// with a single credit.
	position := &model.Position{
		ID:          "pos-1",
		ChallengeID: "ch-1",
		UserID:      "user-1",
		Symbol:      "BTCUSD",
		Direction:   model.DirectionBuy,
		Quantity:    100,
		EntryPrice:  50,
	}
	fx := newTradingFixture(t,
		[]*model.Challenge{paidChallenge("ch-1", "user-1")},
		[]*model.Position{position},
		map[string]float64{"BTCUSD": 56},
	)

	fx.challengeRepo.onLock = func() {
		exit := 56.0
		winner := fx.positionRepo.positions["pos-1"]
		winner.ExitPrice = &exit
		winner.ProfitLoss = 600
		winner.Closed = true
		fx.challengeRepo.challenges["ch-1"].CurrentBalance += 600
	}

	_, err := fx.svc.ClosePosition(context.Background(), "user-1", "pos-1", 56)

	assert.ErrorIs(t, err, ErrPositionAlreadyClosed)

	stored, err := fx.challengeRepo.GetByID(context.Background(), "ch-1")
	require.NoError(t, err)
	assert.Equal(t, 10600.0, stored.CurrentBalance, "realized P&L must be credited exactly once")
	assert.Equal(t, 600.0, fx.positionRepo.positions["pos-1"].ProfitLoss)
}

func TestTradingService_RefreshAndEvaluate(t *testing.T) {
	openPosition := func() *model.Position {
		return &model.Position{
			ID:          "pos-1",
			ChallengeID: "ch-1",
			UserID:      "user-1",
			Symbol:      "BTCUSD",
			Direction:   model.DirectionBuy,
			Quantity:    100,
			EntryPrice:  50,
		}
	}

	tests := []struct {
		name       string
		price      float64
		wantEquity float64
		wantStatus model.ChallengeStatus
		wantReason *model.FailedReason
	}{
		{
			// equity 10000 + (45-50)*100 = 9500, exactly 5% down on the day
			name:       "drop to the daily limit fails",
			price:      45,
			wantEquity: 9500,
			wantStatus: model.ChallengeStatusFailed,
			wantReason: reasonPtr(model.FailedReasonDailyLoss),
		},
		{
			// equity 10000 + (56-50)*100 = 10600, inside all limits
			name:       "moderate gain stays active",
			price:      56,
			wantEquity: 10600,
			wantStatus: model.ChallengeStatusActive,
		},
		{
			// equity 10000 + (60-50)*100 = 11000, exactly the 10% target
			name:       "gain to the profit target passes",
			price:      60,
			wantEquity: 11000,
			wantStatus: model.ChallengeStatusPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newTradingFixture(t,
				[]*model.Challenge{paidChallenge("ch-1", "user-1")},
				[]*model.Position{openPosition()},
				map[string]float64{"BTCUSD": tt.price},
			)

			challenge, equity, err := fx.svc.RefreshAndEvaluate(context.Background(), "ch-1")

			require.NoError(t, err)
			assert.Equal(t, tt.wantEquity, equity)
			assert.Equal(t, tt.wantStatus, challenge.Status)
			assert.Equal(t, tt.wantReason, challenge.FailedReason)

			stored, err := fx.challengeRepo.GetByID(context.Background(), "ch-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status, "transition must be persisted")
		})
	}
}

func TestTradingService_RefreshAndEvaluateMissingPriceDegradesToZero(t *testing.T) {
	// The open position has no quote. It must contribute zero to equity, so
	// the challenge is judged on realized balance alone and stays active.
	position := &model.Position{
		ID:          "pos-1",
		ChallengeID: "ch-1",
		UserID:      "user-1",
		Symbol:      "UNPRICED",
		Direction:   model.DirectionBuy,
		Quantity:    100,
		EntryPrice:  50,
	}
	fx := newTradingFixture(t,
		[]*model.Challenge{paidChallenge("ch-1", "user-1")},
		[]*model.Position{position},
		map[string]float64{},
	)

	challenge, equity, err := fx.svc.RefreshAndEvaluate(context.Background(), "ch-1")

	require.NoError(t, err)
	assert.Equal(t, 10000.0, equity)
	assert.Equal(t, model.ChallengeStatusActive, challenge.Status)
}

func TestTradingService_RefreshAndEvaluateTerminalFastPath(t *testing.T) {
	failed := paidChallenge("ch-1", "user-1")
	failed.Status = model.ChallengeStatusFailed
	reason := model.FailedReasonTotalLoss
	failed.FailedReason = &reason

	fx := newTradingFixture(t, []*model.Challenge{failed}, nil, map[string]float64{})

	challenge, equity, err := fx.svc.RefreshAndEvaluate(context.Background(), "ch-1")

	require.NoError(t, err)
	assert.Equal(t, model.ChallengeStatusFailed, challenge.Status)
	assert.Equal(t, 10000.0, equity)

	_, _, err = fx.svc.RefreshAndEvaluate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTradingService_ClosePositionLossFailsChallenge(t *testing.T) {
	// BUY 100 @ 50 closed at 40: realized -1000 hits the 10% total loss.
	position := &model.Position{
		ID:          "pos-1",
		ChallengeID: "ch-1",
		UserID:      "user-1",
		Symbol:      "BTCUSD",
		Direction:   model.DirectionBuy,
		Quantity:    100,
		EntryPrice:  50,
	}
	fx := newTradingFixture(t,
		[]*model.Challenge{paidChallenge("ch-1", "user-1")},
		[]*model.Position{position},
		map[string]float64{"BTCUSD": 40},
	)

	resp, err := fx.svc.ClosePosition(context.Background(), "user-1", "pos-1", 40)

	require.NoError(t, err)
	assert.Equal(t, -1000.0, resp.Position.ProfitLoss)
	assert.Equal(t, 9000.0, resp.Challenge.CurrentBalance)
	assert.Equal(t, model.ChallengeStatusFailed, resp.Challenge.Status)
	assert.Equal(t, reasonPtr(model.FailedReasonTotalLoss), resp.Challenge.FailedReason)
}

func TestTradingService_GetChallengeStatus(t *testing.T) {
	position := &model.Position{
		ID:          "pos-1",
		ChallengeID: "ch-1",
		UserID:      "user-1",
		Symbol:      "BTCUSD",
		Direction:   model.DirectionBuy,
		Quantity:    100,
		EntryPrice:  50,
	}
	fx := newTradingFixture(t,
		[]*model.Challenge{paidChallenge("ch-1", "user-1")},
		[]*model.Position{position},
		map[string]float64{"BTCUSD": 56},
	)

	resp, err := fx.svc.GetChallengeStatus(context.Background(), "user-1", "ch-1")

	require.NoError(t, err)
	assert.Equal(t, 10600.0, resp.Equity)
	assert.Equal(t, 600.0, resp.ProfitLoss.TotalPnL)
	assert.InDelta(t, 6.0, resp.ProfitLoss.ProfitPercentage, 1e-9)
	assert.Equal(t, model.ChallengeStatusActive, resp.Challenge.Status)

	_, err = fx.svc.GetChallengeStatus(context.Background(), "user-2", "ch-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTradingService_ListChallengePositionsAnnotatesOpenOnly(t *testing.T) {
	open := &model.Position{
		ID:          "pos-open",
		ChallengeID: "ch-1",
		UserID:      "user-1",
		Symbol:      "BTCUSD",
		Direction:   model.DirectionBuy,
		Quantity:    10,
		EntryPrice:  50,
	}
	exit := 55.0
	closed := &model.Position{
		ID:          "pos-closed",
		ChallengeID: "ch-1",
		UserID:      "user-1",
		Symbol:      "ETHUSD",
		Direction:   model.DirectionSell,
		Quantity:    5,
		EntryPrice:  60,
		ExitPrice:   &exit,
		ProfitLoss:  25,
		Closed:      true,
	}
	fx := newTradingFixture(t,
		[]*model.Challenge{paidChallenge("ch-1", "user-1")},
		[]*model.Position{open, closed},
		map[string]float64{"BTCUSD": 56, "ETHUSD": 61},
	)

	resp, err := fx.svc.ListChallengePositions(context.Background(), "user-1", "ch-1")

	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)

	for _, view := range resp.Positions {
		switch view.ID {
		case "pos-open":
			require.NotNil(t, view.CurrentPrice)
			assert.Equal(t, 56.0, *view.CurrentPrice)
			require.NotNil(t, view.UnrealizedPnL)
			assert.Equal(t, 60.0, *view.UnrealizedPnL)
		case "pos-closed":
			assert.Nil(t, view.CurrentPrice)
			assert.Nil(t, view.UnrealizedPnL)
			assert.Equal(t, 25.0, view.ProfitLoss)
		default:
			t.Fatalf("unexpected position %s", view.ID)
		}
	}
}

func TestTradingService_ListMarkets(t *testing.T) {
	fx := newTradingFixture(t, nil, nil, nil)

	resp := fx.svc.ListMarkets()

	assert.Equal(t, len(resp.Markets), resp.Count)
	assert.NotEmpty(t, resp.Markets)

	hasCasablanca := false
	for _, market := range resp.Markets {
		if market.Exchange == "Casablanca Stock Exchange" {
			hasCasablanca = true
		}
	}
	assert.True(t, hasCasablanca)
}

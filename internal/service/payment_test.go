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

type fakePaymentRepo struct {
	payments map[string]*model.Payment
}

func newFakePaymentRepo(payments ...*model.Payment) *fakePaymentRepo {
	repo := &fakePaymentRepo{payments: map[string]*model.Payment{}}
	for _, p := range payments {
		repo.payments[p.ID] = p
	}
	return repo
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *model.Payment, opts ...utils.DBOption) error {
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Payment, error) {
	payment, ok := f.payments[id]
	if !ok || payment.UserID != userID {
		return nil, repository.ErrRecordNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentRepo) Update(ctx context.Context, payment *model.Payment, opts ...utils.DBOption) error {
	stored, ok := f.payments[payment.ID]
	if !ok {
		return repository.ErrRecordNotFound
	}
	stored.Status = payment.Status
	stored.ChallengeID = payment.ChallengeID
	stored.GatewayPayload = payment.GatewayPayload
	return nil
}

func (f *fakePaymentRepo) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func paymentConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Challenge.DurationDays = 30
	cfg.Challenge.MaxDailyLossPct = 5
	cfg.Challenge.MaxTotalLossPct = 10
	cfg.Challenge.ProfitTargetPct = 10
	return cfg
}

func newPaymentFixture(payments ...*model.Payment) (PaymentService, *fakePaymentRepo, *fakeChallengeRepo) {
	cfg := paymentConfig()
	paymentRepo := newFakePaymentRepo(payments...)
	challengeRepo := newFakeChallengeRepo()
	challengeSvc := NewChallengeService(cfg, newTestLogger(), challengeRepo)
	svc := NewPaymentService(cfg, newTestLogger(), paymentRepo, challengeSvc, fakeUnitOfWork{})
	return svc, paymentRepo, challengeRepo
}

func TestPaymentService_CreateDefaultsCurrency(t *testing.T) {
	svc, paymentRepo, _ := newPaymentFixture()

	resp, err := svc.Create(context.Background(), "user-1", dto.CreatePaymentRequest{
		PlanType: "starter",
		Method:   "CMI",
		Amount:   99,
	})

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, resp.Payment.Status)
	assert.Equal(t, "USD", resp.Payment.Currency)
	assert.Nil(t, resp.Payment.ChallengeID)
	assert.Len(t, paymentRepo.payments, 1)
}

func TestPaymentService_ConfirmProvisionsChallenge(t *testing.T) {
	pending := &model.Payment{
		ID:       "pay-1",
		UserID:   "user-1",
		PlanType: model.PlanPro,
		Amount:   299,
		Currency: "USD",
		Method:   model.PaymentMethodCMI,
		Status:   model.PaymentStatusPending,
	}
	svc, paymentRepo, challengeRepo := newPaymentFixture(pending)

	resp, err := svc.Confirm(context.Background(), "user-1", "pay-1", dto.ConfirmPaymentRequest{
		GatewayPayload: map[string]interface{}{"transaction_id": "tx-42"},
	})

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, resp.Payment.Status)
	require.NotNil(t, resp.Challenge)
	assert.Equal(t, model.PlanPro, resp.Challenge.PlanType)
	assert.Equal(t, 50000.0, resp.Challenge.InitialBalance)
	assert.Equal(t, 50000.0, resp.Challenge.CurrentBalance)
	assert.Equal(t, model.ChallengeStatusActive, resp.Challenge.Status)
	assert.Equal(t, model.PaymentStatusCompleted, resp.Challenge.PaymentStatus)
	assert.Equal(t, 5.0, resp.Challenge.MaxDailyLossPct)

	stored := paymentRepo.payments["pay-1"]
	require.NotNil(t, stored.ChallengeID)
	assert.Equal(t, resp.Challenge.ID, *stored.ChallengeID)
	assert.NotEmpty(t, stored.GatewayPayload)

	provisioned, err := challengeRepo.GetByID(context.Background(), resp.Challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", provisioned.UserID)
}

func TestPaymentService_ConfirmErrors(t *testing.T) {
	done := &model.Payment{
		ID:     "pay-done",
		UserID: "user-1",
		Status: model.PaymentStatusCompleted,
	}
	svc, _, _ := newPaymentFixture(done)

	_, err := svc.Confirm(context.Background(), "user-1", "pay-done", dto.ConfirmPaymentRequest{})
	assert.ErrorIs(t, err, ErrPaymentNotPending)

	_, err = svc.Confirm(context.Background(), "user-1", "missing", dto.ConfirmPaymentRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Confirm(context.Background(), "user-2", "pay-done", dto.ConfirmPaymentRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChallengeService_ProvisionSetsRiskLimitsAndWindow(t *testing.T) {
	cfg := paymentConfig()
	challengeRepo := newFakeChallengeRepo()
	svc := NewChallengeService(cfg, newTestLogger(), challengeRepo).(*challengeService)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	challenge, err := svc.Provision(context.Background(), "user-1", model.PlanElite, model.PaymentMethodCrypto)

	require.NoError(t, err)
	assert.Equal(t, 100000.0, challenge.InitialBalance)
	assert.Equal(t, 100000.0, challenge.DailyStartBalance)
	require.NotNil(t, challenge.LastResetDate)
	assert.Equal(t, now, *challenge.LastResetDate)
	assert.Equal(t, now, challenge.StartDate)
	assert.Equal(t, now.AddDate(0, 0, 30), challenge.EndDate)
	assert.Equal(t, 10.0, challenge.MaxTotalLossPct)
	assert.Equal(t, 10.0, challenge.ProfitTargetPct)
}

func TestChallengeService_ProvisionRejectsUnknownPlan(t *testing.T) {
	svc := NewChallengeService(paymentConfig(), newTestLogger(), newFakeChallengeRepo())

	_, err := svc.Provision(context.Background(), "user-1", model.PlanType("vip"), model.PaymentMethodCMI)
	assert.Error(t, err)
}

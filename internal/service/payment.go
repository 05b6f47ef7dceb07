package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prop-challenge/config"
	"prop-challenge/internal/dto"
	"prop-challenge/internal/model"
	"prop-challenge/internal/repository"
	"prop-challenge/pkg/logger"
	"prop-challenge/pkg/utils"

	"github.com/google/uuid"
)

// PaymentService records plan purchases and, on confirmation, provisions
// the challenge in the same transaction as the payment update. The gateway
// interaction itself (redirect, webhook verification) happens upstream.
type PaymentService interface {
	Create(ctx context.Context, userID string, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	Confirm(ctx context.Context, userID, paymentID string, req dto.ConfirmPaymentRequest) (*dto.PaymentResponse, error)
	ListByUser(ctx context.Context, userID string) ([]model.Payment, error)
}

type paymentService struct {
	cfg              *config.Config
	log              *logger.Logger
	paymentRepo      repository.PaymentRepository
	challengeService ChallengeService
	uow              repository.UnitOfWork
	now              func() time.Time
}

func NewPaymentService(
	cfg *config.Config,
	log *logger.Logger,
	paymentRepo repository.PaymentRepository,
	challengeService ChallengeService,
	uow repository.UnitOfWork,
) PaymentService {
	return &paymentService{
		cfg:              cfg,
		log:              log,
		paymentRepo:      paymentRepo,
		challengeService: challengeService,
		uow:              uow,
		now:              time.Now,
	}
}

func (s *paymentService) Create(ctx context.Context, userID string, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	payment := &model.Payment{
		ID:       uuid.NewString(),
		UserID:   userID,
		PlanType: model.PlanType(req.PlanType),
		Amount:   req.Amount,
		Currency: currency,
		Method:   model.PaymentMethod(req.Method),
		Status:   model.PaymentStatusPending,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &dto.PaymentResponse{Payment: payment}, nil
}

// Confirm marks a pending payment completed and provisions its challenge
// atomically: either both records land or neither does.
func (s *paymentService) Confirm(ctx context.Context, userID, paymentID string, req dto.ConfirmPaymentRequest) (*dto.PaymentResponse, error) {
	var (
		payment   *model.Payment
		challenge *model.Challenge
	)

	err := s.uow.Run(func(opts ...utils.DBOption) error {
		var err error
		payment, err = s.paymentRepo.GetByIDForUser(ctx, paymentID, userID, opts...)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if payment.Status != model.PaymentStatusPending {
			return ErrPaymentNotPending
		}

		challenge, err = s.challengeService.Provision(ctx, userID, payment.PlanType, payment.Method, opts...)
		if err != nil {
			return err
		}

		payment.Status = model.PaymentStatusCompleted
		payment.ChallengeID = &challenge.ID
		if req.GatewayPayload != nil {
			raw, err := json.Marshal(req.GatewayPayload)
			if err != nil {
				return fmt.Errorf("failed to encode gateway payload: %w", err)
			}
			payment.GatewayPayload = raw
		}

		return s.paymentRepo.Update(ctx, payment, opts...)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Payment confirmed",
		logger.StringField("payment_id", payment.ID),
		logger.StringField("challenge_id", challenge.ID))

	return &dto.PaymentResponse{Payment: payment, Challenge: challenge}, nil
}

func (s *paymentService) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	return s.paymentRepo.ListByUser(ctx, userID)
}

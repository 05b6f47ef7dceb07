package repository

import (
	"context"

	"prop-challenge/internal/model"
	"prop-challenge/pkg/utils"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment, opts ...utils.DBOption) error
	GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Payment, error)
	Update(ctx context.Context, payment *model.Payment, opts ...utils.DBOption) error
	ListByUser(ctx context.Context, userID string) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{
		db: db,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Payment, error) {
	var payment model.Payment
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		First(&payment, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Select("status", "challenge_id", "gateway_payload").
		Updates(payment).Error
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

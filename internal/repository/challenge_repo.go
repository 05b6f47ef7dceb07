package repository

import (
	"context"
	"errors"

	"prop-challenge/internal/model"
	"prop-challenge/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRecordNotFound = gorm.ErrRecordNotFound

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.Challenge, error)
	GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Challenge, error)
	// GetByIDLocked takes a row lock on the challenge; must run inside a
	// transaction passed via WithTx.
	GetByIDLocked(ctx context.Context, id string, opts ...utils.DBOption) (*model.Challenge, error)
	Update(ctx context.Context, challenge *model.Challenge, opts ...utils.DBOption) error
	ListByUser(ctx context.Context, userID string) ([]model.Challenge, error)
	ListCompletedSince(ctx context.Context, month string) ([]model.Challenge, error)
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{
		db: db,
	}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *model.Challenge, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.Challenge, error) {
	var challenge model.Challenge
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).First(&challenge, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Challenge, error) {
	var challenge model.Challenge
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		First(&challenge, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) GetByIDLocked(ctx context.Context, id string, opts ...utils.DBOption) (*model.Challenge, error) {
	var challenge model.Challenge
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&challenge, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) Update(ctx context.Context, challenge *model.Challenge, opts ...utils.DBOption) error {
	res := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Model(&model.Challenge{}).
		Where("id = ?", challenge.ID).
		Select("current_balance", "status", "failed_reason", "completed_at",
			"daily_start_balance", "last_reset_date", "payment_status", "payment_method").
		Updates(challenge)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("challenge update affected no rows")
	}
	return nil
}

func (r *challengeRepository) ListByUser(ctx context.Context, userID string) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *challengeRepository) ListCompletedSince(ctx context.Context, month string) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') = ?", month).
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

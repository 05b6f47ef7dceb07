package repository

import (
	"context"

	"prop-challenge/internal/model"
	"prop-challenge/pkg/utils"

	"gorm.io/gorm"
)

type PositionRepository interface {
	Create(ctx context.Context, position *model.Position, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.Position, error)
	GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Position, error)
	Update(ctx context.Context, position *model.Position, opts ...utils.DBOption) error
	ListByChallenge(ctx context.Context, challengeID string) ([]model.Position, error)
	ListOpenByChallenge(ctx context.Context, challengeID string, opts ...utils.DBOption) ([]model.Position, error)
	ListByUser(ctx context.Context, userID string) ([]model.Position, error)
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{
		db: db,
	}
}

func (r *positionRepository) Create(ctx context.Context, position *model.Position, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).Create(position).Error
}

func (r *positionRepository) GetByID(ctx context.Context, id string, opts ...utils.DBOption) (*model.Position, error) {
	var position model.Position
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).First(&position, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *positionRepository) GetByIDForUser(ctx context.Context, id, userID string, opts ...utils.DBOption) (*model.Position, error) {
	var position model.Position
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Joins("JOIN challenges ON challenges.id = positions.challenge_id").
		Where("positions.id = ? AND challenges.user_id = ?", id, userID).
		First(&position).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *positionRepository) Update(ctx context.Context, position *model.Position, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ?", position.ID).
		Select("exit_price", "profit_loss", "closed").
		Updates(position).Error
}

func (r *positionRepository) ListByChallenge(ctx context.Context, challengeID string) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("opened_at DESC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) ListOpenByChallenge(ctx context.Context, challengeID string, opts ...utils.DBOption) ([]model.Position, error) {
	var positions []model.Position
	err := utils.ApplyOptions(r.db, opts...).WithContext(ctx).
		Where("challenge_id = ? AND closed = false", challengeID).
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) ListByUser(ctx context.Context, userID string) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("opened_at DESC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

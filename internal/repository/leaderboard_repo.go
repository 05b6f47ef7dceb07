package repository

import (
	"context"

	"prop-challenge/internal/model"
	"prop-challenge/pkg/utils"

	"gorm.io/gorm"
)

type LeaderboardRepository interface {
	// ReplaceMonth swaps the whole month's ranking in one transaction.
	ReplaceMonth(ctx context.Context, month string, entries []model.LeaderboardEntry, opts ...utils.DBOption) error
	ListMonth(ctx context.Context, month string, limit int) ([]model.LeaderboardEntry, error)
	GetUserRank(ctx context.Context, userID, month string) (*model.LeaderboardEntry, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{
		db: db,
	}
}

func (r *leaderboardRepository) ReplaceMonth(ctx context.Context, month string, entries []model.LeaderboardEntry, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db, opts...).WithContext(ctx)
	if err := db.Where("month = ?", month).Delete(&model.LeaderboardEntry{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return db.Create(&entries).Error
}

func (r *leaderboardRepository) ListMonth(ctx context.Context, month string, limit int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	q := r.db.WithContext(ctx).Where("month = ?", month).Order("rank ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *leaderboardRepository) GetUserRank(ctx context.Context, userID, month string) (*model.LeaderboardEntry, error) {
	var entry model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		First(&entry, "user_id = ? AND month = ?", userID, month).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

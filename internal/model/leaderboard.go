package model

import "time"

// LeaderboardEntry is a monthly ranking row, snapshotted from challenge
// profit percentages by the scheduler.
type LeaderboardEntry struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID           string    `gorm:"not null;type:uuid" json:"user_id"`
	Username         string    `gorm:"not null" json:"username"`
	ProfitPercentage float64   `gorm:"not null;default:0" json:"profit_percentage"`
	Rank             int       `gorm:"not null" json:"rank"`
	Month            string    `gorm:"not null;index" json:"month"` // "YYYY-MM"
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboards"
}

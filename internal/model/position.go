package model

import "time"

type TradeDirection string

const (
	DirectionBuy  TradeDirection = "BUY"
	DirectionSell TradeDirection = "SELL"
)

// Position is a single simulated trade on a challenge. Once Closed is true,
// ExitPrice and ProfitLoss are frozen.
type Position struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	ChallengeID string         `gorm:"not null;type:uuid" json:"challenge_id"`
	UserID      string         `gorm:"type:uuid" json:"user_id"`
	Symbol      string         `gorm:"not null" json:"symbol"`
	Direction   TradeDirection `gorm:"not null" json:"direction"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	EntryPrice  float64        `gorm:"not null" json:"entry_price"`
	ExitPrice   *float64       `json:"exit_price"`
	ProfitLoss  float64        `gorm:"not null;default:0" json:"profit_loss"`
	Closed      bool           `gorm:"not null;default:false" json:"closed"`
	OpenedAt    time.Time      `gorm:"not null" json:"opened_at"`
	Challenge   Challenge      `gorm:"foreignKey:ChallengeID;references:ID" json:"-"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// UnrealizedPnL values the open position against currentPrice. BUY gains as
// price rises, SELL gains as price falls.
func (p *Position) UnrealizedPnL(currentPrice float64) float64 {
	switch p.Direction {
	case DirectionBuy:
		return (currentPrice - p.EntryPrice) * float64(p.Quantity)
	case DirectionSell:
		return (p.EntryPrice - currentPrice) * float64(p.Quantity)
	}
	return 0
}

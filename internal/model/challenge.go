package model

import (
	"time"

	"prop-challenge/pkg/utils"
)

type ChallengeStatus string

const (
	ChallengeStatusActive ChallengeStatus = "active"
	ChallengeStatusPassed ChallengeStatus = "passed"
	ChallengeStatusFailed ChallengeStatus = "failed"
)

type FailedReason string

const (
	FailedReasonTotalLoss FailedReason = "total_loss"
	FailedReasonDailyLoss FailedReason = "daily_loss"
)

type PlanType string

const (
	PlanStarter PlanType = "starter"
	PlanPro     PlanType = "pro"
	PlanElite   PlanType = "elite"
)

// Challenge is a time-boxed simulated-trading evaluation with fixed capital
// and risk rules. CurrentBalance holds realized P&L only; unrealized P&L is
// computed on demand from live prices and never persisted here.
type Challenge struct {
	ID                string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID            string          `gorm:"not null;type:uuid" json:"user_id"`
	PlanType          PlanType        `gorm:"not null;default:'starter'" json:"plan_type"`
	InitialBalance    float64         `gorm:"not null" json:"initial_balance"`
	CurrentBalance    float64         `gorm:"not null" json:"current_balance"`
	Status            ChallengeStatus `gorm:"not null;default:'active'" json:"status"`
	MaxDailyLossPct   float64         `gorm:"not null;default:5" json:"max_daily_loss_pct"`
	MaxTotalLossPct   float64         `gorm:"not null;default:10" json:"max_total_loss_pct"`
	ProfitTargetPct   float64         `gorm:"not null;default:10" json:"profit_target_pct"`
	DailyStartBalance float64         `json:"daily_start_balance"`
	LastResetDate     *time.Time      `json:"last_reset_date"`
	StartDate         time.Time       `gorm:"not null" json:"start_date"`
	EndDate           time.Time       `gorm:"not null" json:"end_date"`
	FailedReason      *FailedReason   `json:"failed_reason"`
	CompletedAt       *time.Time      `json:"completed_at"`
	PaymentStatus     PaymentStatus   `gorm:"not null;default:'pending'" json:"payment_status"`
	PaymentMethod     string          `json:"payment_method"`
	User              User            `gorm:"foreignKey:UserID;references:ID" json:"-"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// IsTerminal reports whether the challenge has left the ACTIVE state.
// Terminal states never transition again.
func (c *Challenge) IsTerminal() bool {
	return c.Status != ChallengeStatusActive
}

// CheckAndResetDailyBalance snapshots the realized balance as the daily
// baseline when the UTC calendar day has rolled over since the last reset.
// The baseline is CurrentBalance, not equity: only realized results bank
// into the new day. Idempotent within a single UTC day.
func (c *Challenge) CheckAndResetDailyBalance(now time.Time) bool {
	if c.LastResetDate == nil || utils.BeforeUTCDay(*c.LastResetDate, now) {
		c.DailyStartBalance = c.CurrentBalance
		t := now
		c.LastResetDate = &t
		return true
	}
	return false
}

// DailyBaseline returns the daily-loss reference balance, falling back to
// InitialBalance when the snapshot was never taken.
func (c *Challenge) DailyBaseline() float64 {
	if c.DailyStartBalance == 0 {
		return c.InitialBalance
	}
	return c.DailyStartBalance
}

// ProfitPercentage is realized profit relative to the initial balance.
func (c *Challenge) ProfitPercentage() float64 {
	if c.InitialBalance == 0 {
		return 0
	}
	return (c.CurrentBalance - c.InitialBalance) / c.InitialBalance * 100
}

// RemainingDays returns whole days left before the challenge expires.
func (c *Challenge) RemainingDays(now time.Time) int {
	return utils.RemainingDays(c.EndDate, now)
}

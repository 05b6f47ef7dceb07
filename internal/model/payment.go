package model

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCMI    PaymentMethod = "CMI"
	PaymentMethodCrypto PaymentMethod = "Crypto"
	PaymentMethodPayPal PaymentMethod = "PayPal"
)

// Payment records a plan purchase. GatewayPayload keeps the raw gateway
// response for audit; the gateway call itself happens outside this service.
type Payment struct {
	ID             string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string         `gorm:"not null;type:uuid" json:"user_id"`
	ChallengeID    *string        `gorm:"type:uuid" json:"challenge_id"`
	PlanType       PlanType       `gorm:"not null" json:"plan_type"`
	Amount         float64        `gorm:"not null" json:"amount"`
	Currency       string         `gorm:"not null;default:'USD'" json:"currency"`
	Method         PaymentMethod  `gorm:"not null" json:"method"`
	Status         PaymentStatus  `gorm:"not null;default:'pending'" json:"status"`
	GatewayPayload datatypes.JSON `json:"gateway_payload"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

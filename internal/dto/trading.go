package dto

import "prop-challenge/internal/model"

type ExecuteTradeRequest struct {
	ChallengeID string `json:"challenge_id" validate:"required,uuid4"`
	Symbol      string `json:"symbol" validate:"required"`
	Direction   string `json:"type" validate:"required,oneof=BUY SELL buy sell"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

type ClosePositionRequest struct {
	ExitPrice float64 `json:"exit_price" validate:"required,gt=0"`
}

type ExecuteTradeResponse struct {
	Position  *PositionView    `json:"trade"`
	Challenge *model.Challenge `json:"challenge"`
}

type ClosePositionResponse struct {
	Position  *PositionView    `json:"trade"`
	Challenge *model.Challenge `json:"challenge"`
}

// PositionView is a position annotated with live valuation for open trades.
type PositionView struct {
	model.Position
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	UnrealizedPnL *float64 `json:"unrealized_pnl,omitempty"`
}

type ProfitLossSummary struct {
	TotalPnL         float64 `json:"total_pnl"`
	ProfitPercentage float64 `json:"profit_percentage"`
}

type ChallengeStatusResponse struct {
	Challenge  *model.Challenge  `json:"challenge"`
	Equity     float64           `json:"equity"`
	ProfitLoss ProfitLossSummary `json:"profit_loss"`
}

type PositionListResponse struct {
	Positions []PositionView `json:"trades"`
	Count     int            `json:"count"`
}

type MarketListResponse struct {
	Markets []Market `json:"markets"`
	Count   int      `json:"count"`
}

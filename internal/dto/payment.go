package dto

import "prop-challenge/internal/model"

type CreatePaymentRequest struct {
	PlanType string  `json:"plan_type" validate:"required,oneof=starter pro elite"`
	Method   string  `json:"method" validate:"required,oneof=CMI Crypto PayPal"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
}

type ConfirmPaymentRequest struct {
	GatewayPayload map[string]interface{} `json:"gateway_payload"`
}

type PaymentResponse struct {
	Payment   *model.Payment   `json:"payment"`
	Challenge *model.Challenge `json:"challenge,omitempty"`
}

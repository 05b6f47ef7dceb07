package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_UnrealizedPnL(t *testing.T) {
	tests := []struct {
		name         string
		direction    TradeDirection
		quantity     int
		entryPrice   float64
		currentPrice float64
		want         float64
	}{
		{
			name:         "buy position gains when price rises",
			direction:    DirectionBuy,
			quantity:     10,
			entryPrice:   100,
			currentPrice: 110,
			want:         100,
		},
		{
			name:         "buy position loses when price falls",
			direction:    DirectionBuy,
			quantity:     100,
			entryPrice:   50,
			currentPrice: 45,
			want:         -500,
		},
		{
			name:         "sell position gains when price falls",
			direction:    DirectionSell,
			quantity:     10,
			entryPrice:   100,
			currentPrice: 90,
			want:         100,
		},
		{
			name:         "sell position loses when price rises",
			direction:    DirectionSell,
			quantity:     5,
			entryPrice:   200,
			currentPrice: 210,
			want:         -50,
		},
		{
			name:         "flat price is zero",
			direction:    DirectionBuy,
			quantity:     10,
			entryPrice:   100,
			currentPrice: 100,
			want:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Position{
				Direction:  tt.direction,
				Quantity:   tt.quantity,
				EntryPrice: tt.entryPrice,
			}
			assert.Equal(t, tt.want, p.UnrealizedPnL(tt.currentPrice))
		})
	}
}

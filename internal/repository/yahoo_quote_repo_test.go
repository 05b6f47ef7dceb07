package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapYahooTicker(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"XAUUSD", "GC=F"},
		{"xauusd", "GC=F"},
		{"BTCUSD", "BTC-USD"},
		{"EURUSD=X", "EURUSD=X"},
		{" eurusd ", "EURUSD=X"},
		{"AAPL", "AAPL"},
		{"USDJPY", "JPY=X"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapYahooTicker(tt.symbol), "symbol %q", tt.symbol)
	}
}

package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"prop-challenge/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrChallengeNotActive, http.StatusBadRequest},
		{service.ErrPriceUnavailable, http.StatusBadRequest},
		{service.ErrPositionAlreadyClosed, http.StatusBadRequest},
		{service.ErrInvalidExitPrice, http.StatusBadRequest},
		{service.ErrInvalidQuantity, http.StatusBadRequest},
		{service.ErrPaymentNotPending, http.StatusBadRequest},
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("database exploded"), http.StatusInternalServerError},
		{fmt.Errorf("%w: BTCUSD", service.ErrPriceUnavailable), http.StatusBadRequest},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFromError(tt.err), "error: %v", tt.err)
	}
}

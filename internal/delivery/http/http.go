package http

import (
	"context"
	"errors"
	"net/http"

	"prop-challenge/config"
	"prop-challenge/internal/dto"
	"prop-challenge/internal/service"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type HttpAPIHandler struct {
	cfg       *config.Config
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, cfg *config.Config, echo *echo.Echo, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:       cfg,
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: h.cfg.API.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	base := h.echo.Group("/api")
	h.SetupAuth(base)
	h.SetupTrading(base)
	h.SetupChallenges(base)
	h.SetupPayments(base)
	h.SetupLeaderboard(base)
}

// statusFromError maps service errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrChallengeNotActive),
		errors.Is(err, service.ErrPriceUnavailable),
		errors.Is(err, service.ErrPositionAlreadyClosed),
		errors.Is(err, service.ErrInvalidExitPrice),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrPaymentNotPending):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	code := statusFromError(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}
	return c.JSON(code, dto.NewBaseResponse(code, message, nil))
}

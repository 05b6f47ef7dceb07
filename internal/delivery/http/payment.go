package http

import (
	"net/http"

	"prop-challenge/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPayments(base *echo.Group) {
	v1 := base.Group("/v1/payments", h.requireAuth)
	{
		v1.POST("", h.createPayment)
		v1.POST("/:id/confirm", h.confirmPayment)
		v1.GET("", h.listPayments)
	}
}

func (h *HttpAPIHandler) createPayment(c echo.Context) error {
	req := new(dto.CreatePaymentRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.PaymentService.Create(c.Request().Context(), currentUserID(c), *req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *HttpAPIHandler) confirmPayment(c echo.Context) error {
	req := new(dto.ConfirmPaymentRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	resp, err := h.service.PaymentService.Confirm(c.Request().Context(), currentUserID(c), c.Param("id"), *req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HttpAPIHandler) listPayments(c echo.Context) error {
	payments, err := h.service.PaymentService.ListByUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"count":    len(payments),
	})
}

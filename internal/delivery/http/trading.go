package http

import (
	"net/http"

	"prop-challenge/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupTrading(base *echo.Group) {
	v1 := base.Group("/v1/trading", h.requireAuth)
	{
		v1.GET("/markets", h.listMarkets)
		v1.POST("/execute", h.executeTrade)
		v1.PUT("/close-trade/:id", h.closePosition)
		v1.GET("/history", h.tradeHistory)
		v1.GET("/challenge/:id/trades", h.challengeTrades)
		v1.GET("/challenge/:id/status", h.challengeStatus)
		v1.POST("/challenge/:id/sync", h.challengeStatus)
	}
}

func (h *HttpAPIHandler) listMarkets(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.TradingService.ListMarkets())
}

func (h *HttpAPIHandler) executeTrade(c echo.Context) error {
	req := new(dto.ExecuteTradeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.TradingService.ExecuteTrade(c.Request().Context(), currentUserID(c), *req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *HttpAPIHandler) closePosition(c echo.Context) error {
	req := new(dto.ClosePositionRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	resp, err := h.service.TradingService.ClosePosition(c.Request().Context(), currentUserID(c), c.Param("id"), req.ExitPrice)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HttpAPIHandler) tradeHistory(c echo.Context) error {
	resp, err := h.service.TradingService.ListUserPositions(c.Request().Context(), currentUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HttpAPIHandler) challengeTrades(c echo.Context) error {
	resp, err := h.service.TradingService.ListChallengePositions(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HttpAPIHandler) challengeStatus(c echo.Context) error {
	resp, err := h.service.TradingService.GetChallengeStatus(c.Request().Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

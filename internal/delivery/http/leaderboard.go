package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupLeaderboard(base *echo.Group) {
	v1 := base.Group("/v1/leaderboard")
	{
		v1.GET("", h.listLeaderboard)
		v1.GET("/me", h.myRank, h.requireAuth)
	}
}

func (h *HttpAPIHandler) listLeaderboard(c echo.Context) error {
	entries, err := h.service.LeaderboardService.ListMonth(c.Request().Context(), c.QueryParam("month"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
		"count":       len(entries),
	})
}

func (h *HttpAPIHandler) myRank(c echo.Context) error {
	entry, err := h.service.LeaderboardService.UserRank(c.Request().Context(), currentUserID(c), c.QueryParam("month"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rank": entry})
}

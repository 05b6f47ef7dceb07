package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupChallenges(base *echo.Group) {
	v1 := base.Group("/v1/challenges", h.requireAuth)
	{
		v1.GET("", h.listChallenges)
		v1.GET("/:id", h.getChallenge)
	}
}

func (h *HttpAPIHandler) listChallenges(c echo.Context) error {
	challenges, err := h.service.ChallengeService.ListByUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"challenges": challenges,
		"count":      len(challenges),
	})
}

func (h *HttpAPIHandler) getChallenge(c echo.Context) error {
	challenge, err := h.service.ChallengeService.GetByIDForUser(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"challenge": challenge})
}

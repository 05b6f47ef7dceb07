package http

import (
	"net/http"
	"strings"

	"prop-challenge/internal/dto"

	"github.com/labstack/echo/v4"
)

const contextKeyUserID = "user_id"

// requireAuth validates the bearer token and stores the caller's user id on
// the echo context.
func (h *HttpAPIHandler) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, dto.NewBaseResponse(http.StatusUnauthorized, "missing bearer token", nil))
		}

		claims, err := h.service.AuthService.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, dto.NewBaseResponse(http.StatusUnauthorized, "invalid token", nil))
		}

		c.Set(contextKeyUserID, claims.UserID)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	userID, _ := c.Get(contextKeyUserID).(string)
	return userID
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-chat/chat-service/internal/api/middleware"
	"github.com/campus-chat/chat-service/internal/core/domain"
)

// ensureSelf rejects a request acting on behalf of another user when the
// Auth middleware ran. Without auth (open mode) every request passes.
func ensureSelf(c echo.Context, userIDs ...string) error {
	caller, ok := c.Get(middleware.CtxUserID).(string)
	if !ok {
		return nil
	}
	if caller == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	for _, id := range userIDs {
		if id == caller {
			return nil
		}
	}
	return domain.ErrForbidden
}

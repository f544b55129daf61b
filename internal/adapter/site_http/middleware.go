package site_http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/logger"
)

const (
	HeaderUserID  = "X-User-Id"
	HeaderWorldID = "X-World-Id"

	ctxUserID  = "wc_user_id"
	ctxWorldID = "wc_world_id"
)

// RequireIdentity rejects requests without the trusted user header and
// exposes user and world to handlers and to the context logger.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, errorBody{Error: "missing " + HeaderUserID + " header"})
			}
			worldID := domain.NormalizeWorldID(c.Request().Header.Get(HeaderWorldID))

			ctx := logger.WithUserID(c.Request().Context(), userID)
			if worldID != nil {
				ctx = logger.WithWorldID(ctx, *worldID)
			}
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(ctxUserID, userID)
			c.Set(ctxWorldID, worldID)
			return next(c)
		}
	}
}

func identity(c echo.Context) (string, *string) {
	userID, _ := c.Get(ctxUserID).(string)
	worldID, _ := c.Get(ctxWorldID).(*string)
	return userID, worldID
}

package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/interview-assistant/errors"
	"github.com/johnquangdev/interview-assistant/pkg/jwt"
)

// ContextKeyTicket is where the validated stream ticket claims are stored
const ContextKeyTicket = "stream_ticket"

// RequireStreamTicket only lets through requests carrying a valid ticket for
// the session in the :id path parameter. The ticket is read from the
// "ticket" query parameter or a bearer Authorization header.
func RequireStreamTicket(tickets *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.QueryParam("ticket")
			if raw == "" {
				auth := c.Request().Header.Get("Authorization")
				if parts := strings.SplitN(auth, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					raw = strings.TrimSpace(parts[1])
				}
			}
			if raw == "" {
				return writeError(c, errors.ErrUnauthenticated())
			}

			claims, err := tickets.ValidateStreamTicket(raw)
			if err != nil {
				if err == jwt.ErrTicketExpired {
					return writeError(c, errors.ErrTokenExpired())
				}
				return writeError(c, errors.ErrInvalidToken())
			}
			if claims.SessionID.String() != c.Param("id") {
				return writeError(c, errors.ErrInvalidToken().WithDetail("reason", "ticket issued for another session"))
			}

			c.Set(ContextKeyTicket, claims)
			return next(c)
		}
	}
}

// TicketClaims returns the claims stored by RequireStreamTicket
func TicketClaims(c echo.Context) (*jwt.Claims, bool) {
	claims, ok := c.Get(ContextKeyTicket).(*jwt.Claims)
	return claims, ok
}

func writeError(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

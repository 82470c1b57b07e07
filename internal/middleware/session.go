package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
	"github.com/iliyamo/tourism-booking-gateway/internal/session"
)

// Resolver turns a raw session JWT into a live session.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (model.Session, error)
}

// LoadSession resolves the bearer token, when present, and stores the session
// under SessionKey.  A missing or dead token leaves the request anonymous;
// RequireSession decides whether that is acceptable.  Store failures are
// reported as 503 because the caller may well be logged in.
func LoadSession(r Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearer(c)
			if raw == "" {
				return next(c)
			}
			s, err := r.Resolve(c.Request().Context(), raw)
			switch {
			case err == nil:
				c.Set(SessionKey, s)
			case errors.Is(err, session.ErrNoSession):
			default:
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"message": "session store unavailable",
					"status":  http.StatusServiceUnavailable,
				})
			}
			return next(c)
		}
	}
}

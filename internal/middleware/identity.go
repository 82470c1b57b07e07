package middleware

// identity.go holds the context keys and accessors shared by the middleware
// and the handlers.  The resolved session is stored under SessionKey by
// LoadSession; everything downstream reads it through SessionFrom.

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

// SessionKey is the echo context key of the resolved model.Session.
const SessionKey = "session"

// SessionFrom returns the session attached to the request, if any.
func SessionFrom(c echo.Context) (model.Session, bool) {
	s, ok := c.Get(SessionKey).(model.Session)
	return s, ok && s.ID != ""
}

// bearer extracts the raw token of an "Authorization: Bearer" header.
func bearer(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// sessionKeyPart identifies the caller for rate limiting and logging.
func sessionKeyPart(c echo.Context) string {
	if s, ok := SessionFrom(c); ok {
		return s.ID
	}
	return "anon"
}

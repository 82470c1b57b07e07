package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireSession guards routes that need a logged-in user, such as the cart.
// Browser navigations (Accept: text/html) are redirected to loginPath with
// the original URL in returnUrl; API calls get 401 {message, status}.
func RequireSession(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := SessionFrom(c); ok {
				return next(c)
			}
			if wantsHTML(c.Request()) {
				target := loginPath + "?returnUrl=" + url.QueryEscape(c.Request().URL.RequestURI())
				return c.Redirect(http.StatusFound, target)
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"message": "authentication required",
				"status":  http.StatusUnauthorized,
			})
		}
	}
}

func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

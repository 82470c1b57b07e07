package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-booking-gateway/internal/middleware"
	"github.com/iliyamo/tourism-booking-gateway/internal/session"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Sessions *session.Manager
	API      *upstream.Client
}

func NewAuthHandler(s *session.Manager, api *upstream.Client) *AuthHandler {
	return &AuthHandler{Sessions: s, API: api}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login: authenticate upstream and return a gateway session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	issued, err := h.Sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return okMessage(c, http.StatusOK, issued, "login successful")
}

// Logout ends the caller's session.  Calling it without a session is not an
// error; the client just wants to be logged out.
func (h *AuthHandler) Logout(c echo.Context) error {
	s, found := middleware.SessionFrom(c)
	if !found {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.Sessions.Logout(c.Request().Context(), s); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the upstream profile of the logged-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	u, err := h.API.Me(c.Request().Context(), s.Token)
	if upstream.IsUnauthorized(err) {
		h.Sessions.Expire(c.Request().Context(), s)
	}
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, u)
}

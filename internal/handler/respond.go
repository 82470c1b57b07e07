package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tourism-booking-gateway/internal/cart"
	"github.com/iliyamo/tourism-booking-gateway/internal/middleware"
	"github.com/iliyamo/tourism-booking-gateway/internal/model"
	"github.com/iliyamo/tourism-booking-gateway/internal/session"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
)

// ok writes the success envelope used by every JSON endpoint.
func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func okMessage(c echo.Context, status int, data any, msg string) error {
	return c.JSON(status, echo.Map{"success": true, "data": data, "message": msg})
}

func errJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg, "status": status})
}

// fail maps a domain or upstream error onto {message, status}.
func fail(c echo.Context, err error) error {
	var ve *model.ValidationError
	var ae *upstream.APIError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": ve.Error(),
			"status":  http.StatusUnprocessableEntity,
			"field":   ve.Field,
		})
	case errors.Is(err, cart.ErrNotAuthenticated), errors.Is(err, session.ErrNoSession):
		return errJSON(c, http.StatusUnauthorized, "session expired, please log in again")
	case errors.Is(err, session.ErrMissingCredentials):
		return errJSON(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &ae):
		switch {
		case ae.Status >= 400 && ae.Status < 500:
			return errJSON(c, ae.Status, ae.Message)
		case ae.Status >= 200 && ae.Status < 300:
			// a 2xx with success=false is a business rejection
			return errJSON(c, http.StatusUnprocessableEntity, ae.Message)
		default:
			return errJSON(c, http.StatusBadGateway, ae.Message)
		}
	default:
		middleware.LoggerFrom(c).Error("unhandled error",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "internal error")
	}
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-booking-gateway/internal/availability"
	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

type AvailabilityHandler struct {
	Checker *availability.Checker
}

func NewAvailabilityHandler(ch *availability.Checker) *AvailabilityHandler {
	return &AvailabilityHandler{Checker: ch}
}

// Check handles GET /v1/availability?servicio_id&fecha_inicio&hora_inicio&hora_fin
// with optional fecha_fin and reserva_servicio_id (the booking to ignore when
// rescheduling).
func (h *AvailabilityHandler) Check(c echo.Context) error {
	var q model.AvailabilityQuery
	if v := c.QueryParam("servicio_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fail(c, &model.ValidationError{Field: "servicio_id", Reason: "must be a positive integer"})
		}
		q.ServiceID = id
	}
	q.StartDate = c.QueryParam("fecha_inicio")
	if v := c.QueryParam("fecha_fin"); v != "" {
		q.EndDate = &v
	}
	q.StartTime = c.QueryParam("hora_inicio")
	q.EndTime = c.QueryParam("hora_fin")
	if v := c.QueryParam("reserva_servicio_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fail(c, &model.ValidationError{Field: "reserva_servicio_id", Reason: "must be a positive integer"})
		}
		q.ExcludeBookingID = &id
	}

	free, err := h.Checker.Check(c.Request().Context(), token(c), q)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"disponible": free})
}

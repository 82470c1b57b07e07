package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-booking-gateway/internal/cart"
	"github.com/iliyamo/tourism-booking-gateway/internal/middleware"
	"github.com/iliyamo/tourism-booking-gateway/internal/model"
	"github.com/iliyamo/tourism-booking-gateway/internal/session"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
)

// CartHandler serves the guarded cart routes.  Every route runs behind
// RequireSession, so a session is always present.
type CartHandler struct {
	Sync     *cart.Synchronizer
	Sessions *session.Manager
	API      *upstream.Client
}

func NewCartHandler(sync *cart.Synchronizer, s *session.Manager, api *upstream.Client) *CartHandler {
	return &CartHandler{Sync: sync, Sessions: s, API: api}
}

// cartView is the client-facing shape of a mirror.
type cartView struct {
	Reservation *model.Reservation     `json:"reservation"`
	Items       []model.ServiceBooking `json:"items"`
	Count       int                    `json:"count"`
	Total       float64                `json:"total"`
	SyncedAt    *time.Time             `json:"synced_at"`
	InFlight    bool                   `json:"in_flight"`
}

func (h *CartHandler) view(sessionID string, m cart.Mirror) cartView {
	v := cartView{
		Reservation: m.Reservation,
		Items:       m.Items,
		Count:       m.Count(),
		Total:       m.Total(),
		InFlight:    h.Sync.InFlight(sessionID),
	}
	if v.Items == nil {
		v.Items = []model.ServiceBooking{}
	}
	if !m.SyncedAt.IsZero() {
		t := m.SyncedAt
		v.SyncedAt = &t
	}
	return v
}

// failCart ends the gateway session when the upstream no longer accepts its
// token, then reports the error.
func (h *CartHandler) failCart(c echo.Context, s model.Session, err error) error {
	if errors.Is(err, cart.ErrNotAuthenticated) {
		h.Sessions.Expire(c.Request().Context(), s)
	}
	return fail(c, err)
}

// Get handles GET /v1/cart.  With ?cached=1 it returns the stored mirror
// without contacting the upstream.
func (h *CartHandler) Get(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	ctx := c.Request().Context()
	if c.QueryParam("cached") == "1" {
		m, _, err := h.Sync.Snapshot(ctx, s.ID)
		if err != nil {
			return errJSON(c, http.StatusServiceUnavailable, "cart store unavailable")
		}
		return ok(c, http.StatusOK, h.view(s.ID, m))
	}
	m, err := h.Sync.Fetch(ctx, s)
	if err != nil {
		return h.failCart(c, s, err)
	}
	return ok(c, http.StatusOK, h.view(s.ID, m))
}

// AddItem handles POST /v1/cart/items with a booking descriptor body.
func (h *CartHandler) AddItem(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	var req model.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	m, err := h.Sync.AddItem(c.Request().Context(), s, req)
	if err != nil {
		return h.failCart(c, s, err)
	}
	return okMessage(c, http.StatusCreated, h.view(s.ID, m), "service added to cart")
}

// RemoveItem handles DELETE /v1/cart/items/:id.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	id, valid := pathID(c, "id")
	if !valid {
		return errJSON(c, http.StatusBadRequest, "invalid booking id")
	}
	m, err := h.Sync.RemoveItem(c.Request().Context(), s, id)
	if err != nil {
		return h.failCart(c, s, err)
	}
	return okMessage(c, http.StatusOK, h.view(s.ID, m), "service removed from cart")
}

type confirmReq struct {
	Notes string `json:"notas"`
}

// Confirm handles POST /v1/cart/confirm.
func (h *CartHandler) Confirm(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	var req confirmReq
	// the body is optional
	_ = c.Bind(&req)
	res, err := h.Sync.Confirm(c.Request().Context(), s, req.Notes)
	if err != nil {
		return h.failCart(c, s, err)
	}
	return okMessage(c, http.StatusOK, res, "reservation confirmed")
}

// Clear handles DELETE /v1/cart.
func (h *CartHandler) Clear(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	if err := h.Sync.Clear(c.Request().Context(), s); err != nil {
		return h.failCart(c, s, err)
	}
	return okMessage(c, http.StatusOK, h.view(s.ID, cart.Mirror{}), "cart emptied")
}

// MyReservations handles GET /v1/my-reservations.  ?estado narrows the list
// to one status.
func (h *CartHandler) MyReservations(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	status := model.ReservationStatus(c.QueryParam("estado"))
	if status != "" && !status.Valid() {
		return fail(c, &model.ValidationError{Field: "estado", Reason: "must be pendiente, confirmada, cancelada or completada"})
	}
	list, err := h.API.MyReservations(c.Request().Context(), s.Token)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			return h.failCart(c, s, cart.ErrNotAuthenticated)
		}
		return fail(c, err)
	}
	out := make([]model.Reservation, 0, len(list))
	for _, r := range list {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return ok(c, http.StatusOK, out)
}

package upstream

import (
	"context"
	"net/http"
	"strconv"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

// Cart endpoints.  The cart is the caller's single pending reservation.
const (
	pathCart        = "/reservas/carrito"
	pathCartAdd     = "/reservas/carrito/agregar"
	pathCartItem    = "/reservas/carrito/servicio/"
	pathCartConfirm = "/reservas/carrito/confirmar"
	pathCartClear   = "/reservas/carrito/vaciar"
	pathMyBookings  = "/reservas/mis-reservas"
)

// GetCart returns the pending reservation, or nil when the user has none.
func (c *Client) GetCart(ctx context.Context, token string) (*model.Reservation, error) {
	var env model.Envelope[model.OneOrMany[model.Reservation]]
	if err := c.get(ctx, pathCart, nil, token, &env); err != nil {
		return nil, err
	}
	res, ok := env.Data.First()
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// AddToCart posts a validated booking descriptor.
func (c *Client) AddToCart(ctx context.Context, token string, item model.AddItemRequest) error {
	return c.do(ctx, http.MethodPost, pathCartAdd, nil, token, item, nil)
}

// RemoveFromCart deletes one service booking from the cart.
func (c *Client) RemoveFromCart(ctx context.Context, token string, bookingID uint64) error {
	return c.do(ctx, http.MethodDelete, pathCartItem+strconv.FormatUint(bookingID, 10), nil, token, nil, nil)
}

type confirmReq struct {
	Notes string `json:"notas,omitempty"`
}

// ConfirmCart turns the pending reservation into a confirmed one and returns
// it when the upstream echoes it back.
func (c *Client) ConfirmCart(ctx context.Context, token, notes string) (*model.Reservation, error) {
	var env model.Envelope[model.OneOrMany[model.Reservation]]
	if err := c.do(ctx, http.MethodPost, pathCartConfirm, nil, token, confirmReq{Notes: notes}, &env); err != nil {
		return nil, err
	}
	res, ok := env.Data.First()
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// ClearCart removes every booking from the cart.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, pathCartClear, nil, token, nil, nil)
}

// MyReservations lists the caller's reservations in every status.
func (c *Client) MyReservations(ctx context.Context, token string) ([]model.Reservation, error) {
	var env model.Envelope[Listing[model.Reservation]]
	if err := c.get(ctx, pathMyBookings, nil, token, &env); err != nil {
		return nil, err
	}
	return env.Data.Data, nil
}

// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// CartConfirmedQueue is the durable queue confirmed carts are published to.
const CartConfirmedQueue = "cart.confirmed"

// CartConfirmedEvent is published after the upstream accepts a cart
// confirmation.  It carries what a consumer needs to log or notify without
// calling the upstream again.
type CartConfirmedEvent struct {
    ReservationID uint64              `json:"reservation_id"`
    Code          string              `json:"code"`
    UserID        uint64              `json:"user_id"`
    SessionID     string              `json:"session_id"`
    Bookings      []ConfirmedBooking  `json:"bookings"`
    Total         float64             `json:"total"`
    ConfirmedAt   string              `json:"confirmed_at"`
}

// ConfirmedBooking is the per-service line of a CartConfirmedEvent.
type ConfirmedBooking struct {
    BookingID uint64  `json:"booking_id"`
    ServiceID uint64  `json:"service_id"`
    Service   string  `json:"service,omitempty"`
    Date      string  `json:"date"`
    StartTime string  `json:"start_time"`
    EndTime   string  `json:"end_time"`
    Quantity  int     `json:"quantity"`
    Price     float64 `json:"price"`
}

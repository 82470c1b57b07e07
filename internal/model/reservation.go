package model

import "time"

// ReservationStatus is the lifecycle state shared by reservations and their
// service bookings.  Values match the upstream enum verbatim.
type ReservationStatus string

const (
    StatusPending   ReservationStatus = "pendiente"
    StatusConfirmed ReservationStatus = "confirmada"
    StatusCancelled ReservationStatus = "cancelada"
    StatusCompleted ReservationStatus = "completada"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
    switch s {
    case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
        return true
    }
    return false
}

// Reservation is the upstream reservation aggregate.  A user has at most one
// reservation in StatusPending and that one acts as the cart; the upstream
// enforces this, the gateway only mirrors it.
//
// Fields:
//  ID        – reservas.id
//  UserID    – owner of the reservation
//  Code      – human readable code shown to customers
//  Status    – one of the ReservationStatus values
//  Bookings  – ordered service bookings contained in the reservation
//  Notes     – free text left by the customer
type Reservation struct {
    ID        uint64            `json:"id"`
    UserID    uint64            `json:"usuario_id"`
    Code      string            `json:"codigo_reserva"`
    Status    ReservationStatus `json:"estado"`
    Bookings  []ServiceBooking  `json:"servicios,omitempty"`
    Notes     string            `json:"notas,omitempty"`
    CreatedAt *time.Time        `json:"created_at,omitempty"`
    UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// Total sums the price of every booking in the reservation.  The upstream
// total is authoritative; this is only used for display and events.
func (r *Reservation) Total() float64 {
    if r == nil {
        return 0
    }
    var sum float64
    for _, b := range r.Bookings {
        sum += float64(b.Price)
    }
    return sum
}

// ServiceBooking is one scheduled service instance inside a reservation.
type ServiceBooking struct {
    ID              uint64            `json:"id"`
    ReservationID   uint64            `json:"reserva_id"`
    ServiceID       uint64            `json:"servicio_id"`
    EnterpriseID    uint64            `json:"emprendedor_id"`
    StartDate       string            `json:"fecha_inicio"`
    EndDate         *string           `json:"fecha_fin,omitempty"`
    StartTime       string            `json:"hora_inicio"`
    EndTime         string            `json:"hora_fin"`
    DurationMinutes int               `json:"duracion_minutos"`
    Quantity        int               `json:"cantidad"`
    Price           Amount            `json:"precio"`
    Status          ReservationStatus `json:"estado"`
    ClientNotes     string            `json:"notas_cliente,omitempty"`
    OwnerNotes      string            `json:"notas_emprendedor,omitempty"`
    Service         *Service          `json:"servicio,omitempty"`
    Enterprise      *Enterprise       `json:"emprendedor,omitempty"`
}

package model

import (
    "errors"
    "fmt"
    "strings"
    "time"
)

const (
    DateLayout = "2006-01-02"
    timeLayout = "15:04"
    // timeLayoutSeconds is accepted on input because the upstream echoes
    // times back as TIME columns ("09:00:00").
    timeLayoutSeconds = "15:04:05"
)

// ErrValidation is matched (errors.Is) by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError is raised before any request leaves the gateway.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Reason) }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

// AddItemRequest is the booking descriptor posted to the cart.
type AddItemRequest struct {
    ServiceID       uint64  `json:"servicio_id"`
    EnterpriseID    uint64  `json:"emprendedor_id"`
    StartDate       string  `json:"fecha_inicio"`
    EndDate         *string `json:"fecha_fin,omitempty"`
    StartTime       string  `json:"hora_inicio"`
    EndTime         string  `json:"hora_fin"`
    DurationMinutes int     `json:"duracion_minutos"`
    Quantity        int     `json:"cantidad"`
    ClientNotes     string  `json:"notas_cliente,omitempty"`
}

// Validate checks the descriptor against now and normalises it in place:
// times are reduced to HH:MM, quantity defaults to 1 and DurationMinutes is
// derived from the start/end instants.
func (r *AddItemRequest) Validate(now time.Time) error {
    if r.ServiceID == 0 {
        return invalid("servicio_id", "is required")
    }
    if r.EnterpriseID == 0 {
        return invalid("emprendedor_id", "is required")
    }
    start, end, err := parseRange(r.StartDate, r.EndDate, r.StartTime, r.EndTime)
    if err != nil {
        return err
    }
    today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
    if start.Before(today) {
        return invalid("fecha_inicio", "must not be in the past")
    }
    if r.Quantity < 0 {
        return invalid("cantidad", "must be at least 1")
    }
    if r.Quantity == 0 {
        r.Quantity = 1
    }
    r.StartTime = start.Format(timeLayout)
    r.EndTime = end.Format(timeLayout)
    r.DurationMinutes = int(end.Sub(start) / time.Minute)
    return nil
}

// AvailabilityQuery asks the upstream whether a slot of a service is free.
// ExcludeBookingID lets an existing booking be re-checked against itself.
type AvailabilityQuery struct {
    ServiceID        uint64
    StartDate        string
    EndDate          *string
    StartTime        string
    EndTime          string
    ExcludeBookingID *uint64
}

// Validate checks required fields and ordering; the past-date rule does not
// apply because the upstream answers for any date.
func (q *AvailabilityQuery) Validate() error {
    if q.ServiceID == 0 {
        return invalid("servicio_id", "is required")
    }
    start, end, err := parseRange(q.StartDate, q.EndDate, q.StartTime, q.EndTime)
    if err != nil {
        return err
    }
    q.StartTime = start.Format(timeLayout)
    q.EndTime = end.Format(timeLayout)
    return nil
}

// parseRange combines dates and times into instants (UTC wall clock) and
// rejects an end that is not strictly after the start.
func parseRange(startDate string, endDate *string, startTime, endTime string) (time.Time, time.Time, error) {
    var zero time.Time
    startDate = strings.TrimSpace(startDate)
    if startDate == "" {
        return zero, zero, invalid("fecha_inicio", "is required")
    }
    day, err := time.Parse(DateLayout, startDate)
    if err != nil {
        return zero, zero, invalid("fecha_inicio", "must be YYYY-MM-DD")
    }
    endDay := day
    if endDate != nil && strings.TrimSpace(*endDate) != "" {
        endDay, err = time.Parse(DateLayout, strings.TrimSpace(*endDate))
        if err != nil {
            return zero, zero, invalid("fecha_fin", "must be YYYY-MM-DD")
        }
        if endDay.Before(day) {
            return zero, zero, invalid("fecha_fin", "must not be before fecha_inicio")
        }
    }
    if strings.TrimSpace(startTime) == "" {
        return zero, zero, invalid("hora_inicio", "is required")
    }
    if strings.TrimSpace(endTime) == "" {
        return zero, zero, invalid("hora_fin", "is required")
    }
    st, err := parseClock(startTime)
    if err != nil {
        return zero, zero, invalid("hora_inicio", "must be HH:MM")
    }
    et, err := parseClock(endTime)
    if err != nil {
        return zero, zero, invalid("hora_fin", "must be HH:MM")
    }
    start := day.Add(st)
    end := endDay.Add(et)
    if !end.After(start) {
        return zero, zero, invalid("hora_fin", "must be after hora_inicio")
    }
    return start, end, nil
}

// parseClock returns the offset from midnight of an "HH:MM[:SS]" string.
func parseClock(s string) (time.Duration, error) {
    s = strings.TrimSpace(s)
    layout := timeLayout
    if strings.Count(s, ":") == 2 {
        layout = timeLayoutSeconds
    }
    t, err := time.Parse(layout, s)
    if err != nil {
        return 0, err
    }
    return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}

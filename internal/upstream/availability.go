package upstream

import (
	"context"
	"net/url"
	"strconv"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

type availabilityResp struct {
	Success   bool `json:"success"`
	Available bool `json:"disponible"`
}

// CheckAvailability relays the upstream verdict for a slot.  The query is
// sent as-is; callers validate it first.
func (c *Client) CheckAvailability(ctx context.Context, token string, q model.AvailabilityQuery) (bool, error) {
	v := url.Values{}
	v.Set("servicio_id", strconv.FormatUint(q.ServiceID, 10))
	v.Set("fecha_inicio", q.StartDate)
	if q.EndDate != nil && *q.EndDate != "" {
		v.Set("fecha_fin", *q.EndDate)
	}
	v.Set("hora_inicio", q.StartTime)
	v.Set("hora_fin", q.EndTime)
	if q.ExcludeBookingID != nil {
		v.Set("reserva_servicio_id", strconv.FormatUint(*q.ExcludeBookingID, 10))
	}
	var out availabilityResp
	if err := c.get(ctx, "/reserva-servicios/verificar-disponibilidad", v, token, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

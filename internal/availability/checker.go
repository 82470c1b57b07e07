// Package availability relays slot checks to the upstream.  Conflict
// detection happens upstream; this package only validates and forwards.
package availability

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

// Source answers availability queries.
type Source interface {
	CheckAvailability(ctx context.Context, token string, q model.AvailabilityQuery) (bool, error)
}

// Checker validates a query and returns the upstream verdict.
type Checker struct {
	src Source
	log *zap.Logger
}

func NewChecker(src Source, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{src: src, log: log.Named("availability")}
}

// Check returns whether the slot is free.  Invalid queries fail with a
// *model.ValidationError and never reach the upstream.
func (c *Checker) Check(ctx context.Context, token string, q model.AvailabilityQuery) (bool, error) {
	if err := q.Validate(); err != nil {
		return false, err
	}
	ok, err := c.src.CheckAvailability(ctx, token, q)
	if err != nil {
		return false, err
	}
	c.log.Debug("checked",
		zap.Uint64("service_id", q.ServiceID),
		zap.String("date", q.StartDate),
		zap.String("from", q.StartTime),
		zap.String("to", q.EndTime),
		zap.Bool("available", ok))
	return ok, nil
}

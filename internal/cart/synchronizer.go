// Package cart keeps a per-session mirror of the upstream cart (the user's
// single pending reservation) consistent with the server after each call.
package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
	"github.com/iliyamo/tourism-booking-gateway/internal/queue"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
)

// ErrNotAuthenticated signals that the upstream rejected the session's token.
// The mirror has already been cleared when it is returned.
var ErrNotAuthenticated = errors.New("not authenticated")

// Backend is the subset of the upstream client the synchronizer drives.
type Backend interface {
	GetCart(ctx context.Context, token string) (*model.Reservation, error)
	AddToCart(ctx context.Context, token string, item model.AddItemRequest) error
	RemoveFromCart(ctx context.Context, token string, bookingID uint64) error
	ConfirmCart(ctx context.Context, token, notes string) (*model.Reservation, error)
	ClearCart(ctx context.Context, token string) error
}

// Publisher receives confirmed carts.  Failures are logged, never returned.
type Publisher interface {
	PublishCartConfirmed(ctx context.Context, ev queue.CartConfirmedEvent) error
}

// Synchronizer is the only writer of cart mirrors.  Mutations of one session
// are serialised; different sessions proceed in parallel.
type Synchronizer struct {
	api   Backend
	store Store
	pub   Publisher
	log   *zap.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
	busy atomic.Bool
}

// Option customises a Synchronizer.
type Option func(*Synchronizer)

// WithPublisher sets the sink for confirmation events.
func WithPublisher(p Publisher) Option { return func(s *Synchronizer) { s.pub = p } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(s *Synchronizer) { s.log = l } }

// WithClock overrides time.Now, used for validation and SyncedAt.
func WithClock(now func() time.Time) Option { return func(s *Synchronizer) { s.now = now } }

// NewSynchronizer builds a Synchronizer over api and store.
func NewSynchronizer(api Backend, store Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		api:   api,
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
		locks: make(map[string]*sessionLock),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.Named("cart")
	return s
}

// acquire locks the session and marks it busy; the returned func releases it.
func (s *Synchronizer) acquire(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	l.busy.Store(true)
	return func() {
		l.busy.Store(false)
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// InFlight reports whether an operation is running for the session.  It is
// an affordance for clients that want to disable buttons, not a guarantee.
func (s *Synchronizer) InFlight(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	return ok && l.busy.Load()
}

// Snapshot returns a copy of the stored mirror without contacting the upstream.
func (s *Synchronizer) Snapshot(ctx context.Context, sessionID string) (Mirror, bool, error) {
	return s.store.Load(ctx, sessionID)
}

// Fetch replaces the mirror with the upstream cart.
func (s *Synchronizer) Fetch(ctx context.Context, sess model.Session) (Mirror, error) {
	defer s.acquire(sess.ID)()
	return s.fetchLocked(ctx, sess)
}

// AddItem validates item locally, posts it and then re-syncs from the
// upstream instead of appending optimistically.
func (s *Synchronizer) AddItem(ctx context.Context, sess model.Session, item model.AddItemRequest) (Mirror, error) {
	if err := item.Validate(s.now()); err != nil {
		return Mirror{}, err
	}
	defer s.acquire(sess.ID)()
	if err := s.api.AddToCart(ctx, sess.Token, item); err != nil {
		return Mirror{}, s.fail(ctx, sess, "add", err)
	}
	s.log.Info("item added",
		zap.String("session", sess.ID),
		zap.Uint64("service_id", item.ServiceID),
		zap.Int("duration_minutes", item.DurationMinutes))
	return s.fetchLocked(ctx, sess)
}

// RemoveItem deletes a booking and re-syncs, the same strategy as AddItem.
func (s *Synchronizer) RemoveItem(ctx context.Context, sess model.Session, bookingID uint64) (Mirror, error) {
	if bookingID == 0 {
		return Mirror{}, &model.ValidationError{Field: "id", Reason: "is required"}
	}
	defer s.acquire(sess.ID)()
	if err := s.api.RemoveFromCart(ctx, sess.Token, bookingID); err != nil {
		return Mirror{}, s.fail(ctx, sess, "remove", err)
	}
	s.log.Info("item removed", zap.String("session", sess.ID), zap.Uint64("booking_id", bookingID))
	return s.fetchLocked(ctx, sess)
}

// Confirm confirms the cart.  The confirmed reservation is no longer the
// active cart, so the mirror is cleared.  The returned reservation is what
// the upstream echoed back and may be nil.
func (s *Synchronizer) Confirm(ctx context.Context, sess model.Session, notes string) (*model.Reservation, error) {
	defer s.acquire(sess.ID)()
	before, _, err := s.store.Load(ctx, sess.ID)
	if err != nil {
		s.log.Warn("load mirror before confirm", zap.String("session", sess.ID), zap.Error(err))
	}
	res, err := s.api.ConfirmCart(ctx, sess.Token, notes)
	if err != nil {
		return nil, s.fail(ctx, sess, "confirm", err)
	}
	s.drop(ctx, sess.ID)
	s.publish(ctx, sess, before, res)
	return res, nil
}

// Clear empties the cart upstream and drops the mirror.
func (s *Synchronizer) Clear(ctx context.Context, sess model.Session) error {
	defer s.acquire(sess.ID)()
	if err := s.api.ClearCart(ctx, sess.Token); err != nil {
		return s.fail(ctx, sess, "clear", err)
	}
	s.drop(ctx, sess.ID)
	return nil
}

// Invalidate drops the mirror without contacting the upstream (logout).
func (s *Synchronizer) Invalidate(ctx context.Context, sessionID string) error {
	defer s.acquire(sessionID)()
	return s.store.Delete(ctx, sessionID)
}

func (s *Synchronizer) fetchLocked(ctx context.Context, sess model.Session) (Mirror, error) {
	res, err := s.api.GetCart(ctx, sess.Token)
	if err != nil {
		return Mirror{}, s.fail(ctx, sess, "fetch", err)
	}
	m := Mirror{Items: []model.ServiceBooking{}, SyncedAt: s.now().UTC()}
	if res != nil {
		m.Items = append(m.Items, res.Bookings...)
		m.Reservation = res
	}
	m = m.clone()
	if err := s.store.Save(ctx, sess.ID, m); err != nil {
		s.log.Warn("save mirror", zap.String("session", sess.ID), zap.Error(err))
	}
	return m, nil
}

// fail applies the error policy: a 401 clears the mirror and becomes
// ErrNotAuthenticated, anything else is returned unchanged.
func (s *Synchronizer) fail(ctx context.Context, sess model.Session, op string, err error) error {
	if upstream.IsUnauthorized(err) {
		s.drop(ctx, sess.ID)
		s.log.Info("upstream rejected token", zap.String("session", sess.ID), zap.String("op", op))
		return ErrNotAuthenticated
	}
	s.log.Warn("cart operation failed",
		zap.String("session", sess.ID), zap.String("op", op),
		zap.Int("upstream_status", upstream.StatusOf(err)), zap.Error(err))
	return err
}

func (s *Synchronizer) drop(ctx context.Context, sessionID string) {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Warn("delete mirror", zap.String("session", sessionID), zap.Error(err))
	}
}

func (s *Synchronizer) publish(ctx context.Context, sess model.Session, before Mirror, res *model.Reservation) {
	if s.pub == nil {
		return
	}
	ev := queue.CartConfirmedEvent{
		UserID:      sess.UserID,
		SessionID:   sess.ID,
		ConfirmedAt: s.now().UTC().Format(time.RFC3339),
	}
	items := before.Items
	if before.Reservation != nil {
		ev.ReservationID = before.Reservation.ID
		ev.Code = before.Reservation.Code
	}
	if res != nil {
		if res.ID != 0 {
			ev.ReservationID = res.ID
		}
		if res.Code != "" {
			ev.Code = res.Code
		}
		if len(res.Bookings) > 0 {
			items = res.Bookings
		}
	}
	for _, b := range items {
		cb := queue.ConfirmedBooking{
			BookingID: b.ID,
			ServiceID: b.ServiceID,
			Date:      b.StartDate,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Quantity:  b.Quantity,
			Price:     float64(b.Price),
		}
		if b.Service != nil {
			cb.Service = b.Service.Name
		}
		ev.Bookings = append(ev.Bookings, cb)
		ev.Total += cb.Price
	}
	// the request context may already be cancelled once the handler returns
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.pub.PublishCartConfirmed(pctx, ev); err != nil {
		s.log.Warn("publish cart.confirmed", zap.Uint64("reservation_id", ev.ReservationID), zap.Error(err))
	}
}

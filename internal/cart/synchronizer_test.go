package cart

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
	"github.com/iliyamo/tourism-booking-gateway/internal/queue"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
)

// fakeBackend keeps one pending reservation in memory and records calls.
type fakeBackend struct {
	mu       sync.Mutex
	items    []model.ServiceBooking
	nextID   uint64
	added    []model.AddItemRequest
	gets     int
	calls    int
	failWith error

	// when set, AddToCart reports on entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeBackend) begin() error {
	f.calls++
	return f.failWith
}

func (f *fakeBackend) GetCart(_ context.Context, _ string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if err := f.begin(); err != nil {
		return nil, err
	}
	if len(f.items) == 0 {
		return nil, nil
	}
	items := append([]model.ServiceBooking(nil), f.items...)
	return &model.Reservation{ID: 1, UserID: 5, Code: "RES-1", Status: model.StatusPending, Bookings: items}, nil
}

func (f *fakeBackend) AddToCart(_ context.Context, _ string, it model.AddItemRequest) error {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	f.nextID++
	f.added = append(f.added, it)
	f.items = append(f.items, model.ServiceBooking{
		ID: f.nextID, ReservationID: 1, ServiceID: it.ServiceID, StartDate: it.StartDate,
		StartTime: it.StartTime, EndTime: it.EndTime, DurationMinutes: it.DurationMinutes,
		EndDate: it.EndDate, Quantity: it.Quantity, Price: 50, Status: model.StatusPending,
		Service: &model.Service{ID: it.ServiceID, Name: "Kayak"},
	})
	return nil
}

func (f *fakeBackend) RemoveFromCart(_ context.Context, _ string, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return &upstream.APIError{Message: "not found", Status: http.StatusNotFound}
}

func (f *fakeBackend) ConfirmCart(_ context.Context, _ string, _ string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	res := &model.Reservation{ID: 1, Code: "RES-1", Status: model.StatusConfirmed, Bookings: f.items}
	f.items = nil
	return res, nil
}

func (f *fakeBackend) ClearCart(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	f.items = nil
	return nil
}

type recordingPublisher struct{ events []queue.CartConfirmedEvent }

func (p *recordingPublisher) PublishCartConfirmed(_ context.Context, ev queue.CartConfirmedEvent) error {
	p.events = append(p.events, ev)
	return nil
}

var (
	testSession = model.Session{ID: "sess-1", UserID: 5, Token: "tok"}
	fixedNow    = func() time.Time { return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC) }
)

func validItem(serviceID uint64) model.AddItemRequest {
	return model.AddItemRequest{ServiceID: serviceID, EnterpriseID: 3, StartDate: "2025-06-01", StartTime: "09:00", EndTime: "11:00", Quantity: 1}
}

func newSync(be *fakeBackend, opts ...Option) (*Synchronizer, *MemoryStore) {
	st := NewMemoryStore()
	return NewSynchronizer(be, st, append([]Option{WithClock(fixedNow)}, opts...)...), st
}

func TestFetchReplacesMirror(t *testing.T) {
	be := &fakeBackend{items: []model.ServiceBooking{{ID: 10}, {ID: 11}, {ID: 12}}}
	s, st := newSync(be)
	m, err := s.Fetch(context.Background(), testSession)
	if err != nil {
		t.Fatal(err)
	}
	if m.Count() != 3 {
		t.Fatalf("count = %d", m.Count())
	}
	be.items = be.items[:1]
	m, err = s.Fetch(context.Background(), testSession)
	if err != nil {
		t.Fatal(err)
	}
	stored, ok, _ := st.Load(context.Background(), testSession.ID)
	if !ok || stored.Count() != 1 || m.Count() != 1 {
		t.Fatalf("mirror not replaced: %d / %d", stored.Count(), m.Count())
	}
}

func TestAddItemPostsThenResyncs(t *testing.T) {
	be := &fakeBackend{}
	s, _ := newSync(be)
	m, err := s.AddItem(context.Background(), testSession, validItem(42))
	if err != nil {
		t.Fatal(err)
	}
	if len(be.added) != 1 || be.added[0].DurationMinutes != 120 || be.added[0].ServiceID != 42 {
		t.Fatalf("posted %+v", be.added)
	}
	if be.gets != 1 {
		t.Fatalf("expected one re-sync GET, got %d", be.gets)
	}
	if m.Count() != 1 || m.Items[0].ServiceID != 42 {
		t.Fatalf("mirror = %+v", m)
	}
}

func TestAddItemRejectedLocally(t *testing.T) {
	be := &fakeBackend{}
	s, _ := newSync(be)
	item := validItem(42)
	item.EndTime = "08:00"
	_, err := s.AddItem(context.Background(), testSession, item)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if be.calls != 0 {
		t.Fatalf("expected no upstream call, got %d", be.calls)
	}
}

func TestRemoveItem(t *testing.T) {
	be := &fakeBackend{}
	s, _ := newSync(be)
	ctx := context.Background()
	for _, id := range []uint64{1, 2, 3} {
		if _, err := s.AddItem(ctx, testSession, validItem(id)); err != nil {
			t.Fatal(err)
		}
	}
	before, _, _ := s.Snapshot(ctx, testSession.ID)
	m, err := s.RemoveItem(ctx, testSession, 2)
	if err != nil {
		t.Fatal(err)
	}
	if m.Has(2) {
		t.Fatal("removed booking still mirrored")
	}
	if m.Count() != before.Count()-1 {
		t.Fatalf("count %d -> %d", before.Count(), m.Count())
	}
}

func TestConfirmAndClearEmptyMirror(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	be := &fakeBackend{}
	s, st := newSync(be, WithPublisher(pub))
	s.AddItem(ctx, testSession, validItem(1))
	s.AddItem(ctx, testSession, validItem(2))

	res, err := s.Confirm(ctx, testSession, "")
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Status != model.StatusConfirmed {
		t.Fatalf("res = %+v", res)
	}
	if m, ok, _ := st.Load(ctx, testSession.ID); ok && m.Count() != 0 {
		t.Fatalf("mirror not cleared after confirm: %d", m.Count())
	}
	if len(pub.events) != 1 || len(pub.events[0].Bookings) != 2 || pub.events[0].Total != 100 || pub.events[0].Code != "RES-1" {
		t.Fatalf("events = %+v", pub.events)
	}

	s.AddItem(ctx, testSession, validItem(3))
	if err := s.Clear(ctx, testSession); err != nil {
		t.Fatal(err)
	}
	if m, ok, _ := st.Load(ctx, testSession.ID); ok && m.Count() != 0 {
		t.Fatalf("mirror not cleared after clear: %d", m.Count())
	}
}

func TestUnauthorizedClearsMirror(t *testing.T) {
	ctx := context.Background()
	unauthorized := &upstream.APIError{Message: "Unauthenticated.", Status: http.StatusUnauthorized}
	ops := map[string]func(s *Synchronizer) error{
		"fetch":   func(s *Synchronizer) error { _, err := s.Fetch(ctx, testSession); return err },
		"add":     func(s *Synchronizer) error { _, err := s.AddItem(ctx, testSession, validItem(9)); return err },
		"remove":  func(s *Synchronizer) error { _, err := s.RemoveItem(ctx, testSession, 1); return err },
		"confirm": func(s *Synchronizer) error { _, err := s.Confirm(ctx, testSession, ""); return err },
		"clear":   func(s *Synchronizer) error { return s.Clear(ctx, testSession) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			be := &fakeBackend{}
			s, st := newSync(be)
			s.AddItem(ctx, testSession, validItem(1))
			be.failWith = unauthorized
			if err := op(s); !errors.Is(err, ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
			if m, ok, _ := st.Load(ctx, testSession.ID); ok || m.Count() != 0 {
				t.Fatalf("mirror survived a 401: %d", m.Count())
			}
		})
	}
}

func TestOtherErrorsKeepMirror(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{}
	core, logs := observer.New(zapcore.WarnLevel)
	s, st := newSync(be, WithLogger(zap.New(core)))
	s.AddItem(ctx, testSession, validItem(1))
	be.failWith = &upstream.APIError{Message: "boom", Status: http.StatusInternalServerError}
	err := s.Clear(ctx, testSession)
	var ae *upstream.APIError
	if !errors.As(err, &ae) || ae.Status != 500 || ae.Message != "boom" {
		t.Fatalf("got %v", err)
	}
	if m, ok, _ := st.Load(ctx, testSession.ID); !ok || m.Count() != 1 {
		t.Fatal("mirror should be untouched")
	}
	entries := logs.FilterMessage("cart operation failed").All()
	if len(entries) != 1 || entries[0].ContextMap()["upstream_status"] != int64(500) {
		t.Fatalf("log entries = %v", entries)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{}
	s, _ := newSync(be)
	it := validItem(1)
	end := "2025-06-02"
	it.EndDate = &end
	if _, err := s.AddItem(ctx, testSession, it); err != nil {
		t.Fatal(err)
	}
	snap, _, _ := s.Snapshot(ctx, testSession.ID)
	snap.Items[0].Quantity = 99
	snap.Items[0].Service.Name = "changed"
	*snap.Items[0].EndDate = "2030-01-01"
	snap.Reservation.Code = "changed"
	again, _, _ := s.Snapshot(ctx, testSession.ID)
	if again.Items[0].Quantity == 99 {
		t.Fatal("snapshot aliases the stored mirror")
	}
	if again.Items[0].Service.Name != "Kayak" {
		t.Fatalf("service shared with the stored mirror: %q", again.Items[0].Service.Name)
	}
	if *again.Items[0].EndDate != "2025-06-02" {
		t.Fatalf("end date shared with the stored mirror: %q", *again.Items[0].EndDate)
	}
	if again.Reservation.Code != "RES-1" {
		t.Fatalf("reservation shared with the stored mirror: %q", again.Reservation.Code)
	}
	if again.Reservation.Bookings != nil {
		t.Fatal("reservation should not duplicate Items")
	}
}

func TestInFlightWhileAdding(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{entered: make(chan struct{}), release: make(chan struct{})}
	s, _ := newSync(be)

	done := make(chan error, 1)
	go func() {
		_, err := s.AddItem(ctx, testSession, validItem(1))
		done <- err
	}()
	<-be.entered
	if !s.InFlight(testSession.ID) {
		t.Fatal("expected InFlight while the upstream call is running")
	}
	if s.InFlight("sess-other") {
		t.Fatal("another session reported busy")
	}
	close(be.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if s.InFlight(testSession.ID) {
		t.Fatal("InFlight still set after AddItem returned")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{}
	s, st := newSync(be)
	other := model.Session{ID: "sess-2", Token: "tok2"}
	s.AddItem(ctx, testSession, validItem(1))
	if err := s.Invalidate(ctx, other.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := st.Load(ctx, testSession.ID); !ok {
		t.Fatal("invalidating one session dropped another")
	}
	if s.InFlight(testSession.ID) {
		t.Fatal("no operation should be in flight")
	}
	if len(s.locks) != 0 {
		t.Fatalf("session locks leaked: %d", len(s.locks))
	}
}

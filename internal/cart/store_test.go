package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "cart", 30*time.Minute), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t)

	end := "2025-06-02"
	in := Mirror{
		Reservation: &model.Reservation{ID: 9, Code: "RES-9", Status: model.StatusPending},
		Items: []model.ServiceBooking{{
			ID: 1, ServiceID: 42, StartDate: "2025-06-01", EndDate: &end,
			StartTime: "09:00", EndTime: "11:00", Quantity: 2, Price: 35.5,
			Service: &model.Service{ID: 42, Name: "Kayak"},
		}},
		SyncedAt: time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC),
	}
	if err := st.Save(ctx, "s1", in); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("cart:s1"); ttl != 30*time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}

	out, found, err := st.Load(ctx, "s1")
	if err != nil || !found {
		t.Fatalf("load: %v %v", found, err)
	}
	if out.Reservation == nil || out.Reservation.Code != "RES-9" || !out.SyncedAt.Equal(in.SyncedAt) {
		t.Fatalf("reservation = %+v synced = %v", out.Reservation, out.SyncedAt)
	}
	b := out.Items[0]
	if b.Price != 35.5 || b.Quantity != 2 || b.Service == nil || b.Service.Name != "Kayak" || b.EndDate == nil || *b.EndDate != end {
		t.Fatalf("booking = %+v", b)
	}
	if out.Total() != 35.5 || out.Count() != 1 {
		t.Fatalf("total %v count %d", out.Total(), out.Count())
	}

	if err := st.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := st.Load(ctx, "s1"); found {
		t.Fatal("mirror survived Delete")
	}
}

func TestRedisStoreDropsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t)
	if err := mr.Set("cart:s2", "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, found, err := st.Load(ctx, "s2"); found || err != nil {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if mr.Exists("cart:s2") {
		t.Fatal("corrupt entry was kept")
	}
}

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

// Mirror is the gateway's copy of one session's pending reservation.  It is
// replaced wholesale on every sync and never merged.
type Mirror struct {
	Reservation *model.Reservation    `json:"reservation,omitempty"`
	Items       []model.ServiceBooking `json:"items"`
	SyncedAt    time.Time              `json:"synced_at"`
}

// Count is the number of bookings in the mirror.
func (m Mirror) Count() int { return len(m.Items) }

// Has reports whether a booking with id is present.
func (m Mirror) Has(id uint64) bool {
	for _, it := range m.Items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Total sums the booking prices.
func (m Mirror) Total() float64 {
	return (&model.Reservation{Bookings: m.Items}).Total()
}

// clone returns a copy that shares no memory with m.  It goes through the
// same JSON form RedisStore keeps, so both stores hand out equal values.
// The reservation's own booking list is dropped since Items carries it.
func (m Mirror) clone() Mirror {
	if m.Reservation != nil {
		r := *m.Reservation
		r.Bookings = nil
		m.Reservation = &r
	}
	var out Mirror
	bs, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(bs, &out)
	}
	if err != nil {
		// not reachable for these types; keep the top level independent at least
		out = Mirror{Reservation: m.Reservation, SyncedAt: m.SyncedAt}
		out.Items = append([]model.ServiceBooking(nil), m.Items...)
	}
	return out
}

// Store keeps mirrors keyed by session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (Mirror, bool, error)
	Save(ctx context.Context, sessionID string, m Mirror) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]Mirror
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{m: make(map[string]Mirror)} }

func (s *MemoryStore) Load(_ context.Context, sessionID string) (Mirror, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.m[sessionID]
	if !ok {
		return Mirror{}, false, nil
	}
	return m.clone(), true, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, m Mirror) error {
	s.mu.Lock()
	s.m[sessionID] = m.clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.m, sessionID)
	s.mu.Unlock()
	return nil
}

// RedisStore keeps mirrors as JSON under "<prefix>:<session id>" so every
// gateway replica sees the same copy.  Entries expire after ttl.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "cart"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string { return s.prefix + ":" + sessionID }

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Mirror, bool, error) {
	bs, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Mirror{}, false, nil
	}
	if err != nil {
		return Mirror{}, false, err
	}
	var m Mirror
	if err := json.Unmarshal(bs, &m); err != nil {
		// a corrupt entry is as good as a missing one
		_ = s.rdb.Del(ctx, s.key(sessionID)).Err()
		return Mirror{}, false, nil
	}
	return m, true, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, m Mirror) error {
	bs, err := json.Marshal(m.clone())
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(sessionID), bs, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, s.key(sessionID)).Err()
}

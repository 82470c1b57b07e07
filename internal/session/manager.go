// Package session binds gateway sessions to upstream bearer tokens.
//
// The upstream token is the only credential the gateway stores.  It is kept
// server side under the session's key and read on every upstream request;
// the client holds a signed session JWT instead.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
	"github.com/iliyamo/tourism-booking-gateway/internal/repository"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
	"github.com/iliyamo/tourism-booking-gateway/internal/utils"
)

// ErrNoSession is returned when a token does not resolve to a live session.
var ErrNoSession = errors.New("no active session")

// ErrMissingCredentials is returned by Login for a blank email or password.
var ErrMissingCredentials = errors.New("email and password are required")

// Authenticator is the upstream auth surface.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (upstream.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// Store persists sessions keyed by the hash of their id.
// repository.SessionRepo is the production implementation.
type Store interface {
	Create(ctx context.Context, idHash string, s model.Session) error
	Get(ctx context.Context, idHash string) (model.Session, error)
	Revoke(ctx context.Context, idHash string) error
}

// Invalidator drops per-session state held elsewhere (the cart mirror).
type Invalidator interface {
	Invalidate(ctx context.Context, sessionID string) error
}

// Issued is what a successful login hands back to the client.
type Issued struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// Manager creates, resolves and ends sessions.
type Manager struct {
	auth   Authenticator
	store  Store
	secret string
	ttl    time.Duration
	log    *zap.Logger

	mu          sync.Mutex
	invalidates []Invalidator
}

func NewManager(auth Authenticator, store Store, secret string, ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{auth: auth, store: store, secret: secret, ttl: ttl, log: log.Named("session")}
}

// OnLogout registers state that must be dropped when a session ends.
func (m *Manager) OnLogout(inv Invalidator) {
	m.mu.Lock()
	m.invalidates = append(m.invalidates, inv)
	m.mu.Unlock()
}

// Login authenticates upstream and opens a session.
func (m *Manager) Login(ctx context.Context, email, password string) (Issued, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Issued{}, ErrMissingCredentials
	}
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return Issued{}, err
	}
	ttl := m.ttl
	if res.ExpiresIn > 0 {
		if up := time.Duration(res.ExpiresIn) * time.Second; up < ttl {
			ttl = up
		}
	}
	id := utils.NewSessionID()
	tok, err := utils.NewSessionToken(m.secret, id, res.User.ID, ttl)
	if err != nil {
		return Issued{}, fmt.Errorf("sign session: %w", err)
	}
	sess := model.Session{ID: id, UserID: res.User.ID, Email: email, Token: res.Bearer(), ExpiresAt: tok.Exp}
	if err := m.store.Create(ctx, utils.HashSessionID(id), sess); err != nil {
		return Issued{}, fmt.Errorf("store session: %w", err)
	}
	m.log.Info("session opened", zap.Uint64("user_id", res.User.ID), zap.Time("expires_at", tok.Exp))
	return Issued{Token: tok.Token, ExpiresAt: tok.Exp, User: res.User}, nil
}

// Resolve turns a session JWT into the live session it names.
func (m *Manager) Resolve(ctx context.Context, raw string) (model.Session, error) {
	id, err := utils.ParseSessionToken(m.secret, raw)
	if err != nil {
		return model.Session{}, ErrNoSession
	}
	s, err := m.store.Get(ctx, utils.HashSessionID(id))
	if errors.Is(err, repository.ErrSessionNotFound) {
		return model.Session{}, ErrNoSession
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("load session: %w", err)
	}
	s.ID = id
	return s, nil
}

// Logout revokes the session, drops dependent state and tells the upstream
// to revoke its token.  Only the local revoke can fail the call.
func (m *Manager) Logout(ctx context.Context, s model.Session) error {
	if err := m.store.Revoke(ctx, utils.HashSessionID(s.ID)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	m.End(ctx, s.ID)
	if err := m.auth.Logout(ctx, s.Token); err != nil && !upstream.IsUnauthorized(err) {
		m.log.Warn("upstream logout failed", zap.Uint64("user_id", s.UserID), zap.Error(err))
	}
	m.log.Info("session closed", zap.Uint64("user_id", s.UserID))
	return nil
}

// Expire revokes a session whose upstream token was rejected.  The upstream
// already considers the token dead, so it is not told.
func (m *Manager) Expire(ctx context.Context, s model.Session) {
	if err := m.store.Revoke(ctx, utils.HashSessionID(s.ID)); err != nil {
		m.log.Warn("revoke expired session", zap.Uint64("user_id", s.UserID), zap.Error(err))
	}
	m.End(ctx, s.ID)
	m.log.Info("session expired upstream", zap.Uint64("user_id", s.UserID))
}

// End drops dependent state for a session whose upstream token stopped
// working, without revoking the session row.
func (m *Manager) End(ctx context.Context, sessionID string) {
	m.mu.Lock()
	invs := append([]Invalidator(nil), m.invalidates...)
	m.mu.Unlock()
	for _, inv := range invs {
		if err := inv.Invalidate(ctx, sessionID); err != nil {
			m.log.Warn("invalidate session state", zap.Error(err))
		}
	}
}

// MemoryStore is an in-process Store for tests and single-node setups
// without MySQL.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]memRow
	now  func() time.Time
}

type memRow struct {
	s       model.Session
	revoked bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]memRow), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, idHash string, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = ""
	s.rows[idHash] = memRow{s: sess}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, idHash string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[idHash]
	if !ok || r.revoked || s.now().After(r.s.ExpiresAt) {
		return model.Session{}, repository.ErrSessionNotFound
	}
	return r.s, nil
}

func (s *MemoryStore) Revoke(_ context.Context, idHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[idHash]; ok {
		r.revoked = true
		s.rows[idHash] = r
	}
	return nil
}

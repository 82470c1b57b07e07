package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

// SessionRepo persists gateway sessions in the 'sessions' table:
//
//	id_hash CHAR(64) PK, user_id BIGINT, email VARCHAR, upstream_token TEXT,
//	expires_at DATETIME, revoked_at DATETIME NULL, created_at DATETIME
//
// Rows are keyed by the hash of the session id, never the id itself.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, idHash string, s model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id_hash, user_id, email, upstream_token, expires_at) VALUES (?,?,?,?,?)",
		idHash, s.UserID, s.Email, s.Token, s.ExpiresAt.UTC())
	return err
}

// Get returns a live session.  The returned Session has no ID; callers that
// know the raw id fill it in.
func (r *SessionRepo) Get(ctx context.Context, idHash string) (model.Session, error) {
	var (
		s         model.Session
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, email, upstream_token, expires_at, revoked_at FROM sessions WHERE id_hash=? LIMIT 1",
		idHash).Scan(&s.UserID, &s.Email, &s.Token, &s.ExpiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, err
	}
	if revokedAt.Valid || time.Now().UTC().After(s.ExpiresAt) {
		return model.Session{}, ErrSessionNotFound
	}
	return s, nil
}

// Revoke marks a session as revoked.  Revoking twice is not an error.
func (r *SessionRepo) Revoke(ctx context.Context, idHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=NOW() WHERE id_hash=? AND revoked_at IS NULL",
		idHash)
	return err
}

// PurgeExpired deletes rows that expired or were revoked before cutoff and
// returns how many were removed.
func (r *SessionRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)",
		cutoff.UTC(), cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package utils // package utils provides helpers for session token creation and hashing

import (
    "crypto/sha256" // SHA‑256 hashing for session ids
    "encoding/hex"  // hex encoding of digests
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"       // random session identifiers
)

// ErrInvalidToken is returned by ParseSessionToken for any token that is
// malformed, expired, signed with another key or missing its subject.
var ErrInvalidToken = errors.New("invalid session token")

// SessionToken is a signed gateway JWT and its expiry.  Clients present it
// as "Authorization: Bearer <Token>"; it never contains the upstream token.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewSessionID returns a random identifier for a new session.
func NewSessionID() string { return uuid.NewString() }

// NewSessionToken signs an HS256 JWT whose subject is the session id.  The
// user id is carried as "uid" for logging only; authorization always goes
// through the session store.
func NewSessionToken(secret, sessionID string, userID uint64, ttl time.Duration) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub": sessionID,
        "uid": userID,
        "exp": exp.Unix(),
        "iat": now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw with secret and returns its session id.
func ParseSessionToken(secret, raw string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject anything that is not HMAC so a forged "alg" cannot downgrade us.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }, jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    sub, err := tok.Claims.GetSubject()
    if err != nil || sub == "" {
        return "", ErrInvalidToken
    }
    return sub, nil
}

// HashSessionID returns the SHA‑256 hex digest of a session id.  Only the
// digest is persisted, so a leaked sessions table cannot be replayed.
func HashSessionID(id string) string {
    sum := sha256.Sum256([]byte(id))
    return hex.EncodeToString(sum[:])
}

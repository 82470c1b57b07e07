package model

import "time"

// User is the authenticated upstream account as returned by login/me.
type User struct {
    ID    uint64   `json:"id"`
    Name  string   `json:"name"`
    Email string   `json:"email"`
    Roles []string `json:"roles,omitempty"`
}

// Session binds a gateway session to the upstream bearer token.  The token
// never leaves the gateway; clients only hold the signed session JWT.
//
// Fields:
//  ID        – random session id (the JWT subject); only its hash is persisted
//  UserID    – upstream user id
//  Token     – upstream bearer token
//  ExpiresAt – after this instant the session is treated as absent
type Session struct {
    ID        string
    UserID    uint64
    Email     string
    Token     string
    ExpiresAt time.Time
}

// Package repository holds the MySQL-backed stores of the gateway.  Sentinel
// errors defined here let higher layers tell "absent" apart from failures.
package repository

import "errors"

// ErrSessionNotFound covers unknown, revoked and expired sessions alike.
// Handlers translate it into an HTTP 401 response.
var ErrSessionNotFound = errors.New("session not found")

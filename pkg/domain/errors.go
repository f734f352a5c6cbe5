package domain

import "errors"

// ErrSessionNotFound is returned when a session key has no stored document
// (never stored, expired, or deleted). Callers treat it as "fresh session".
var ErrSessionNotFound = errors.New("session not found")

// Package common defines shared constants and sentinel errors used across
// the sessiongate client layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Session-level errors.
	ErrNoSession       = errors.New("no active session")
	ErrSessionReplaced = errors.New("session replaced or cleared")

	// Token lifecycle errors.
	ErrTokenExpired   = errors.New("token expired")
	ErrNoRefreshToken = errors.New("refresh token missing")
)

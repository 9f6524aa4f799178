package models

import "time"

// SessionToken is the credential pair the client holds for one session.
// ExpiresAt bounds the access token; the refresh token outlives it and is
// only replaced on a full re-login.
type SessionToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	RememberMe   bool
}

// Valid reports whether the token authorizes requests at the given instant.
// The boundary is exclusive: a token is invalid from ExpiresAt onwards.
func (t *SessionToken) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.ExpiresAt)
}

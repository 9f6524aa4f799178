// Package common contains shared constants and sentinel errors used across
// sessiongate components.
package common

// AuthHeaderName is the HTTP header used to carry the access token on
// outbound requests.
const AuthHeaderName = "Authorization"

// AuthSchemePrefix is prepended to the access token in AuthHeaderName.
const AuthSchemePrefix = "Bearer "

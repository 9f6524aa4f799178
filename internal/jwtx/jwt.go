// Package jwtx extracts claims from JWTs the client holds but does not
// verify. Signature validation is the server's job; the client only needs
// the expiry to plan silent renewal.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractExpiry returns the exp claim of the given token without verifying
// its signature. The second return value is false if the token cannot be
// parsed or carries no exp claim.
func ExtractExpiry(tokenString string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

package apiclient

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AccessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// DecodeAccessClaims reads the claims of an access token without verifying its signature.
// Only the backend can verify tokens; the client uses the claims for display and expiry hints.
func DecodeAccessClaims(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("error decoding access token: %w", err)
	}

	return claims, nil
}

func (c *AccessClaims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}

	return c.ExpiresAt.Time.Before(now.Add(d))
}

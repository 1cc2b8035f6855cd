// Package auth validates the bearer tokens presented to the gateway and
// exposes the identity they carry. Issuing tokens belongs to the LMS's
// authorization server; GenerateToken exists only for tests and local tooling.
package auth

import (
	"context"
	"slices"
	"time"
)

// AccessToken is the identity resolved from a validated bearer token.
type AccessToken struct {
	ID        string
	UserID    int64
	UserName  string
	APIID     int64
	APIKey    string
	Scopes    []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasScope reports whether the token was granted scope.
func (t *AccessToken) HasScope(scope string) bool {
	return slices.Contains(t.Scopes, scope)
}

// TokenValidator resolves a raw bearer token into an AccessToken.
type TokenValidator interface {
	// ValidateToken returns ErrInvalidToken, ErrExpiredToken or
	// ErrTokenNotYetValid when the token cannot be accepted.
	ValidateToken(ctx context.Context, raw string) (*AccessToken, error)
}

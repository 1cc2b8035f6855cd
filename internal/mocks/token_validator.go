package mocks

import (
	"context"

	"github.com/phrazzld/lmsgate/internal/service/auth"
)

// MockTokenValidator implements auth.TokenValidator.
type MockTokenValidator struct {
	ValidateTokenFn func(ctx context.Context, raw string) (*auth.AccessToken, error)

	// Tokens maps raw bearer strings to the tokens they validate to.
	// Unknown strings fail with ValidateErr, or auth.ErrInvalidToken.
	Tokens      map[string]*auth.AccessToken
	ValidateErr error
}

func (m *MockTokenValidator) ValidateToken(ctx context.Context, raw string) (*auth.AccessToken, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, raw)
	}
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	if token, ok := m.Tokens[raw]; ok {
		return token, nil
	}
	return nil, auth.ErrInvalidToken
}

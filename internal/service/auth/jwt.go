package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lmsgate/internal/config"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
)

// DefaultTokenLifetime applies when GenerateToken gets a token without an expiry.
const DefaultTokenLifetime = time.Hour

// JWTService validates HS256 signed access tokens.
type JWTService struct {
	signingKey []byte
	clockSkew  time.Duration    // Allowed time difference for validation to handle clock drift
	timeFunc   func() time.Time // Injectable for testing
}

var _ TokenValidator = (*JWTService)(nil)

type tokenClaims struct {
	UserID   int64  `json:"uid"`
	UserName string `json:"name"`
	APIID    int64  `json:"api_id"`
	APIKey   string `json:"api_key"`
	Scope    string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTService creates a validator for tokens signed with cfg.TokenSecret.
func NewJWTService(cfg config.AuthConfig) (*JWTService, error) {
	if len(cfg.TokenSecret) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 characters")
	}

	return &JWTService{
		signingKey: []byte(cfg.TokenSecret),
		clockSkew:  time.Duration(cfg.ClockSkewSeconds) * time.Second,
		timeFunc:   time.Now,
	}, nil
}

// WithTimeFunc returns a copy of s that reads the current time from now.
func (s *JWTService) WithTimeFunc(now func() time.Time) *JWTService {
	c := *s
	c.timeFunc = now
	return &c
}

// ValidateToken parses and verifies raw, returning the identity it carries.
func (s *JWTService) ValidateToken(ctx context.Context, raw string) (*AccessToken, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingToken
	}

	now := s.timeFunc()
	token, err := jwt.ParseWithClaims(
		raw,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("access token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("access token validation failed: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Debug("access token validation failed: malformed token", "error", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			log.Debug("access token validation failed: invalid signature", "error", err)
		default:
			log.Debug("access token validation failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		log.Debug("access token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	accessToken := &AccessToken{
		ID:       claims.ID,
		UserID:   claims.UserID,
		UserName: claims.UserName,
		APIID:    claims.APIID,
		APIKey:   claims.APIKey,
		Scopes:   strings.Fields(claims.Scope),
	}
	if claims.IssuedAt != nil {
		accessToken.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		accessToken.ExpiresAt = claims.ExpiresAt.Time
	}

	log.Debug("access token validated",
		"user_id", accessToken.UserID,
		"api_id", accessToken.APIID,
		"token_id", accessToken.ID)

	return accessToken, nil
}

// GenerateToken signs a token carrying t's identity. It is used by tests and
// the development token tool; production tokens come from the LMS.
func (s *JWTService) GenerateToken(ctx context.Context, t AccessToken) (string, error) {
	now := s.timeFunc()
	expiresAt := t.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultTokenLifetime)
	}

	claims := tokenClaims{
		UserID:   t.UserID,
		UserName: t.UserName,
		APIID:    t.APIID,
		APIKey:   t.APIKey,
		Scope:    strings.Join(t.Scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   t.UserName,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign access token",
			"error", err,
			"user_id", t.UserID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign access token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}

package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lmsgate/internal/service/auth"
)

// ContextKey is the type of request-scoped values set by the gateway.
type ContextKey string

const (
	TraceIDKey       ContextKey = "traceID"
	AccessTokenKey   ContextKey = "accessToken"
	EffectiveUserKey ContextKey = "effectiveUserID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 16 random bytes as hex. If crypto/rand fails it falls
// back to a random UUID with the dashes removed, which has the same length.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"bytes_requested", TraceIDLength)
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(b)
}

// WithAccessToken stores the validated access token on the context.
func WithAccessToken(ctx context.Context, token *auth.AccessToken) context.Context {
	return context.WithValue(ctx, AccessTokenKey, token)
}

// AccessTokenFromContext returns the token stored by WithAccessToken.
func AccessTokenFromContext(ctx context.Context) (*auth.AccessToken, bool) {
	token, ok := ctx.Value(AccessTokenKey).(*auth.AccessToken)
	if !ok || token == nil {
		return nil, false
	}
	return token, true
}

// WithEffectiveUserID stores the user a self-service route acts on.
func WithEffectiveUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, EffectiveUserKey, userID)
}

// EffectiveUserID returns the user stored by WithEffectiveUserID.
func EffectiveUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(EffectiveUserKey).(int64)
	return id, ok
}

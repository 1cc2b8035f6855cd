// Package middleware holds the net/http and router middleware of the gateway.
package middleware

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phrazzld/lmsgate/internal/api/router"
	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/domain/permission"
	"github.com/phrazzld/lmsgate/internal/metrics"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
	"github.com/phrazzld/lmsgate/internal/service/auth"
	"github.com/phrazzld/lmsgate/internal/store"
)

// Authenticator validates bearer tokens on protected routes.
type Authenticator struct {
	tokens  auth.TokenValidator
	clients store.APIClientStore
	authz   *Authorizer
	metrics *metrics.Metrics
}

// NewAuthenticator creates an Authenticator. clients and authz may be nil, in
// which case per-client permission checks are skipped. m may be nil.
func NewAuthenticator(
	tokens auth.TokenValidator,
	clients store.APIClientStore,
	authz *Authorizer,
	m *metrics.Metrics,
) *Authenticator {
	return &Authenticator{tokens: tokens, clients: clients, authz: authz, metrics: m}
}

// TokenRouteAuth requires a valid bearer token and stores it on the context.
// When the token's API client has permission checks enabled, the request must
// also pass RequirePermission.
func (a *Authenticator) TokenRouteAuth(next router.HandlerFunc) router.HandlerFunc {
	return func(c *router.Ctx) error {
		raw, headerErr := bearerToken(c.Request().Header.Get("Authorization"))
		if headerErr != nil {
			return a.reject(headerErr)
		}

		token, err := a.tokens.ValidateToken(c.Context(), raw)
		if err != nil {
			return a.reject(tokenError(err))
		}

		ctx := shared.WithAccessToken(c.Context(), token)
		log := logger.FromContext(ctx).With(
			slog.Int64("user_id", token.UserID),
			slog.Int64("api_id", token.APIID),
		)
		c.SetContext(logger.WithLogger(ctx, log))

		if a.clients == nil || a.authz == nil {
			return next(c)
		}

		client, err := a.clients.GetByID(c.Context(), token.APIID)
		switch {
		case errors.Is(err, store.ErrAPIClientNotFound):
			return a.reject(shared.ErrTokenInvalid(err))
		case err != nil:
			return err
		case client.PermissionsEnabled:
			return a.authz.RequirePermission(next)(c)
		default:
			return next(c)
		}
	}
}

func (a *Authenticator) reject(err *shared.Error) error {
	if a.metrics != nil {
		a.metrics.AuthFailed(failureReason(err))
	}
	return err
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, *shared.Error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", shared.ErrTokenMissing()
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", shared.ErrTokenInvalid(auth.ErrInvalidToken)
	}
	return token, nil
}

func tokenError(err error) *shared.Error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.ErrTokenExpired(err)
	case errors.Is(err, auth.ErrMissingToken):
		return shared.ErrTokenMissing()
	default:
		return shared.ErrTokenInvalid(err)
	}
}

// Authorizer decides whether an authenticated caller may use a route.
type Authorizer struct {
	perms   store.PermissionStore
	users   store.UserDirectory
	metrics *metrics.Metrics
}

// NewAuthorizer creates an Authorizer. m may be nil.
func NewAuthorizer(perms store.PermissionStore, users store.UserDirectory, m *metrics.Metrics) *Authorizer {
	return &Authorizer{perms: perms, users: users, metrics: m}
}

// RequirePermission admits the request when a permission entry of the
// token's API client matches the verb and the route.
func (z *Authorizer) RequirePermission(next router.HandlerFunc) router.HandlerFunc {
	return func(c *router.Ctx) error {
		token, ok := shared.AccessTokenFromContext(c.Context())
		if !ok {
			return z.reject(shared.ErrTokenMissing())
		}

		route := c.Route()
		perms, err := z.perms.FindForRequest(c.Context(), token.APIID, route.Verb)
		if err != nil {
			return err
		}
		if !permission.AllowsVerb(perms, route.Verb, route.Pattern, c.Request().URL.Path) {
			c.Logger().Info("permission denied", slog.Int("entries", len(perms)))
			return z.reject(shared.ErrNoPermission())
		}
		return next(c)
	}
}

// RequireSelfOrAdmin admits the request when the user id in path parameter
// param is the caller's own, or when the caller is an administrator. The
// id becomes the effective user.
func (z *Authorizer) RequireSelfOrAdmin(param string) router.Middleware {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Ctx) error {
			token, ok := shared.AccessTokenFromContext(c.Context())
			if !ok {
				return z.reject(shared.ErrTokenMissing())
			}

			raw := c.Param(param)
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return shared.IDParseProblem(raw, err)
			}

			if userID != token.UserID {
				admin, err := z.users.IsAdminByUserID(c.Context(), token.UserID)
				if err != nil {
					return err
				}
				if !admin {
					return z.reject(shared.ErrNoAdmin())
				}
			}

			c.SetContext(shared.WithEffectiveUserID(c.Context(), userID))
			return next(c)
		}
	}
}

// ResolveSelf makes the LMS account behind the token's login the effective user.
func (z *Authorizer) ResolveSelf(next router.HandlerFunc) router.HandlerFunc {
	return func(c *router.Ctx) error {
		token, ok := shared.AccessTokenFromContext(c.Context())
		if !ok {
			return z.reject(shared.ErrTokenMissing())
		}

		userID, err := z.users.LoginToUserID(c.Context(), token.UserName)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			noAdmin := shared.ErrNoAdmin()
			noAdmin.Err = err
			return z.reject(noAdmin)
		case err != nil:
			return err
		}

		c.SetContext(shared.WithEffectiveUserID(c.Context(), userID))
		return next(c)
	}
}

func (z *Authorizer) reject(err *shared.Error) error {
	if z.metrics != nil {
		z.metrics.AuthFailed(failureReason(err))
	}
	return err
}

// failureReason turns a rejection into a bounded metrics label.
func failureReason(err *shared.Error) string {
	switch err.RESTCode() {
	case shared.CodeTokenMissing:
		return "token_missing"
	case shared.CodeTokenExpired:
		return "token_expired"
	case shared.CodeTokenInvalid:
		return "token_invalid"
	case shared.CodeNoAdmin:
		return "no_admin"
	case shared.CodeNoPermission:
		return "no_permission"
	default:
		return err.Kind.String()
	}
}

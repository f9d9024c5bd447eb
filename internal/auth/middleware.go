package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/models"
)

// UserSource resolves verified token claims to a live account record,
// projected without the password hash.
type UserSource interface {
	GetUserByID(id int64) (models.User, error)
}

type contextKey string

const userContextKey = contextKey("currentUser")

// Middleware authenticates requests and enforces role checks on protected
// routes.
type Middleware struct {
	tokens *TokenManager
	users  UserSource
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenManager, users UserSource) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Authenticate requires a valid Bearer token, re-reads the account from the
// store and attaches it to the request context. The role inside a token is
// never trusted; a principal deleted after issuance fails the lookup and is
// treated as unauthenticated. Expired and invalid tokens produce the same
// response body and are only distinguished in the logs.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			apperr.Write(w, apperr.Unauthenticated("authorization header required"))
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apperr.Write(w, apperr.Unauthenticated("authorization header must be of the form Bearer {token}"))
			return
		}

		claims, err := m.tokens.Verify(parts[1])
		if err != nil {
			log.Warn().Err(err).Msg("Rejected bearer token")
			apperr.Write(w, apperr.Unauthenticated("invalid or expired token"))
			return
		}

		user, err := m.users.GetUserByID(claims.UserID)
		if err != nil {
			if apperr.From(err).Status == http.StatusNotFound {
				// Principal deleted between issuance and use
				apperr.Write(w, apperr.Unauthenticated("invalid or expired token"))
				return
			}
			log.Error().Err(err).Int64("user_id", claims.UserID).Msg("User lookup failed during authentication")
			apperr.Write(w, apperr.Internal(err))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles restricts a route to the given roles. It must be mounted
// after Authenticate. There is no role hierarchy; admin does not imply user.
func (m *Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				apperr.Write(w, apperr.Unauthenticated("authentication required"))
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				apperr.Write(w, apperr.Forbidden(fmt.Sprintf("role %q is not authorized to access this route", user.Role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser returns the authenticated user attached by Authenticate.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tair/station-pos/pkg/auth"
	"github.com/tair/station-pos/pkg/logger"
)

type contextKey string

const actorKey contextKey = "actor"

// Actor is the authenticated staff member behind a request
type Actor struct {
	UserID   uint
	Username string
	Role     auth.Role
}

// WithActor stores the actor in ctx
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor stored by Authenticator
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}

// TokenValidator validates bearer tokens
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticator guards routes with a bearer token and a minimum role
type Authenticator struct {
	tokens TokenValidator
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(tokens TokenValidator) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// RequireRole validates the bearer token and rejects actors below min
func (a *Authenticator) RequireRole(min auth.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn(r.Context()).Msg("Missing authorization header")
				respondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Warn(r.Context()).Msg("Invalid authorization header format")
				respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := a.tokens.Validate(parts[1])
			if err != nil {
				logger.Warn(r.Context()).Err(err).Msg("Invalid token")
				respondError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if !claims.Role.AtLeast(min) {
				logger.Warn(r.Context()).
					Uint("user_id", claims.UserID).
					Str("role", string(claims.Role)).
					Str("required", string(min)).
					Msg("Insufficient role")
				respondError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			ctx := WithActor(r.Context(), Actor{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// Cashier guards a route for cashiers and above
func (a *Authenticator) Cashier(next http.HandlerFunc) http.HandlerFunc {
	return a.RequireRole(auth.RoleCashier)(next)
}

// Manager guards a route for managers and above
func (a *Authenticator) Manager(next http.HandlerFunc) http.HandlerFunc {
	return a.RequireRole(auth.RoleManager)(next)
}

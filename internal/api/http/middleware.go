package http

import (
	"context"
	"net/http"
	"strings"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/security"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Actor is the authenticated caller, resolved from the bearer token before
// any handler runs.
type Actor struct {
	ID   string
	Role domain.SenderRole
}

// AuthMiddleware validates the bearer token and stores the actor in the
// request context.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeErrorMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			actor := Actor{ID: claims.ActorID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated actor stored by AuthMiddleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(Actor)
	return actor, ok
}

// RequireReviewer wraps a handler that only reviewers may call.
func RequireReviewer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			writeErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if actor.Role != domain.RoleAdmin {
			writeErrorMessage(w, http.StatusForbidden, "reviewer role required")
			return
		}
		next(w, r)
	}
}

// RequireMember wraps a handler that only members may call.
func RequireMember(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			writeErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if actor.Role != domain.RoleMember {
			writeErrorMessage(w, http.StatusForbidden, "member role required")
			return
		}
		next(w, r)
	}
}

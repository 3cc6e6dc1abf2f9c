package api

import (
	"context"
	goerrors "errors"
	"log/slog"
	"net/http"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/realtime"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFrom returns the authenticated principal attached by RequireAuth.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

// RequireAuth resolves the session cookie through the same resolver the
// websocket upgrade path uses and injects the principal into the request
// context for downstream handlers.
func RequireAuth(log *slog.Logger, auth realtime.Authenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			principal, err := auth.ResolvePrincipal(r.Context(), cookie.Value)
			if err != nil {
				if goerrors.Is(err, errors.ErrNoSession) || goerrors.Is(err, errors.ErrUserNotFound) {
					writeError(w, http.StatusUnauthorized, "not authenticated")
					return
				}
				log.Error("Principal resolution failed", "err", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a handler to the given roles. It must be mounted inside
// RequireAuth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if _, ok := allowed[principal.Role]; !ok {
				writeError(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

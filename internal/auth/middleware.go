package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

// Middleware provides request authentication and role gating.
type Middleware struct {
	Tokens *TokenManager
	Logger *slog.Logger
}

// Authenticate validates the bearer token and stores the caller identity in
// the request context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid Authorization header")
			return
		}

		identity, err := m.Tokens.Parse(r.Context(), parts[1])
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
			return
		}

		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin allows only admin accounts through.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := shared.IdentityFromContext(r.Context())
		if !identity.IsAdmin() {
			if m.Logger != nil {
				m.Logger.Warn("admin route denied", slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

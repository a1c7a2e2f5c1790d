package middleware

import (
	"net/http"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	httpserver "github.com/LuisHerrera98/tiendagenai/internal/http"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
)

// RequireAuth rejects requests whose session has no signed-in user.
// ClientContext must run first.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s, ok := auth.SessionFromContext(req.Context())
		if !ok || !s.Authenticated() {
			httpserver.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, req)
	})
}

// RequirePermission allows the request when the session holds any of perms.
// This only hides what the UI would hide; the backend enforces access.
func RequirePermission(perms ...models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			s, ok := auth.SessionFromContext(req.Context())
			if !ok || !s.Authenticated() {
				httpserver.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !s.HasPermission(perms...) {
				httpserver.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

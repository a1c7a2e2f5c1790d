// internal/middleware/tenant_context.go
package middleware

import (
	"log/slog"
	"net/http"

	httpserver "github.com/LuisHerrera98/tiendagenai/internal/http"
	"github.com/LuisHerrera98/tiendagenai/internal/tenant"
)

// TenantContext loads the storefront tenant for the subdomain resolved by
// Edge. Requests without a subdomain pass through untouched.
func TenantContext(res *tenant.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sub := SubdomainFromContext(req.Context())
			if sub == "" {
				next.ServeHTTP(w, req)
				return
			}
			t, err := res.BySubdomain(req.Context(), sub)
			if tenant.IsNotFound(err) {
				httpserver.Error(w, http.StatusNotFound, "store not found")
				return
			}
			if err != nil {
				slog.ErrorContext(req.Context(), "tenant resolve failed", "subdomain", sub, "err", err)
				httpserver.Error(w, http.StatusBadGateway, "store unavailable")
				return
			}
			next.ServeHTTP(w, req.WithContext(tenant.WithTenant(req.Context(), &t)))
		})
	}
}

// RequireTenant rejects requests that did not come through a store subdomain.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if _, ok := tenant.FromContext(req.Context()); !ok {
			httpserver.Error(w, http.StatusNotFound, "store not found")
			return
		}
		next.ServeHTTP(w, req)
	})
}

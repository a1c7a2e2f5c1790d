package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/LuisHerrera98/tiendagenai/internal/backend"
)

const maxRequestIDLen = 64

// RequestID tags each request with an id, reusing a sane X-Request-ID from
// the caller. The id is echoed in the response and forwarded on every
// backend call made with the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(backend.HeaderRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		w.Header().Set(backend.HeaderRequestID, rid)
		next.ServeHTTP(w, r.WithContext(backend.WithRequestID(r.Context(), rid)))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	return backend.RequestID(ctx)
}

// validRequestID accepts short printable ASCII ids without spaces.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

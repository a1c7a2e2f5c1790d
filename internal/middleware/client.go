package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	httpserver "github.com/LuisHerrera98/tiendagenai/internal/http"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
)

// ClientContext identifies the browser by its client_id cookie (issuing one
// on first visit), then loads its bucket and session into the context. The
// session lives for the duration of the request.
func ClientContext(r repo.Repo, api *backend.Factory, cookies auth.CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id, ok := auth.ReadClientID(req)
			if !ok {
				id = uuid.New()
				auth.SetClientCookie(w, id, cookies)
			}
			bucket := repo.NewBucket(r, id)

			sess := auth.NewSession(bucket, api)
			if err := sess.Init(req.Context()); err != nil {
				slog.ErrorContext(req.Context(), "session init failed", "client_id", id.String(), "request_id", RequestIDFromContext(req.Context()), "err", err)
				httpserver.Error(w, http.StatusInternalServerError, "session unavailable")
				return
			}
			defer sess.Dispose()

			ctx := auth.WithBucket(req.Context(), bucket)
			ctx = auth.WithSession(ctx, sess)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	mux_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	"github.com/LuisHerrera98/tiendagenai/internal/config"
	"github.com/LuisHerrera98/tiendagenai/internal/events"
	"github.com/LuisHerrera98/tiendagenai/internal/handlers"
	"github.com/LuisHerrera98/tiendagenai/internal/middleware"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
	"github.com/LuisHerrera98/tiendagenai/internal/tenant"
)

func main() {
	// --- Load config (config.yaml + .env + env overrides) ---
	cfg := config.Load()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Client storage: Postgres when configured, memory otherwise ---
	var store repo.Repo
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("db connect error", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			slog.Error("db ping error", "err", err)
			os.Exit(1)
		}
		if err := repo.EnsureSchema(ctx, pool); err != nil {
			slog.Error("db schema error", "err", err)
			os.Exit(1)
		}
		store = repo.NewPostgres(pool)
	} else {
		slog.Warn("database.url not set, client storage is in memory")
		store = repo.NewMemory()
	}

	// --- Order events ---
	var pub events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		p, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			slog.Error("amqp connect error", "err", err)
			os.Exit(1)
		}
		pub = p
	}
	defer pub.Close()

	api := backend.NewFactory(cfg.API.BaseURL, cfg.API.Timeout)
	cookies := auth.CookieOptions{
		Domain: cfg.Cookies.Domain,
		Secure: cfg.Cookies.Secure,
		MaxAge: cfg.Cookies.MaxAge,
	}

	// --- Router ---
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers.RegisterRoutes(mux, handlers.Deps{
		Repo:       store,
		API:        api,
		Resolver:   tenant.NewResolver(api, cfg.Tenant.CacheTTL),
		Events:     pub,
		Cookies:    cookies,
		RootDomain: cfg.RootDomain,
		DevEnabled: cfg.Dev.Enabled,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           rootHandler(cfg, store, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", cfg.Addr, "api", cfg.API.BaseURL, "root_domain", cfg.RootDomain, "dev", cfg.Dev.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}

// rootHandler puts the edge router in front of app. Request ids, access
// logs and panic recovery wrap everything, edge redirects included.
func rootHandler(cfg config.Config, store repo.Repo, app http.Handler) http.Handler {
	// health checks arrive on bare hosts and must skip the landing redirect
	root := http.NewServeMux()
	root.Handle("/healthz", app)
	root.Handle("/", middleware.Edge(devSubdomain(cfg, store))(app))

	return chi.Chain(
		middleware.RequestID,
		mux_middleware.Logger,
		mux_middleware.Recoverer,
	).Handler(root)
}

// devSubdomain picks the store served on localhost: the client's stored
// choice first, then the configured default. Disabled outside dev mode.
func devSubdomain(cfg config.Config, store repo.Repo) func(*http.Request) string {
	if !cfg.Dev.Enabled {
		return nil
	}
	return func(r *http.Request) string {
		if id, ok := auth.ReadClientID(r); ok {
			v, err := store.Get(r.Context(), id, repo.KeyDevSubdomain)
			if err == nil && v != "" {
				return strings.ToLower(v)
			}
		}
		return cfg.Dev.Subdomain
	}
}

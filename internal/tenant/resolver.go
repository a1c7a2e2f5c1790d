package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
)

var reserved = map[string]bool{"www": true, "api": true}

// ExtractSubdomain returns the tenant label of hostname, or "".
// Loopback hosts have no subdomain of their own and use devOverride.
func ExtractSubdomain(hostname, devOverride string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")

	if isLoopback(host) {
		devOverride = strings.ToLower(strings.TrimSpace(devOverride))
		if devOverride == "" || reserved[devOverride] {
			return ""
		}
		return devOverride
	}

	if net.ParseIP(host) != nil {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 || labels[0] == "" || reserved[labels[0]] {
		return ""
	}
	return labels[0]
}

func isLoopback(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

type cacheItem struct {
	tenant  models.Tenant
	expires time.Time
}

// Resolver looks up storefront metadata by subdomain and caches it briefly.
type Resolver struct {
	api *backend.Factory
	ttl time.Duration

	mu    sync.RWMutex
	cache map[string]cacheItem
	now   func() time.Time
}

func NewResolver(api *backend.Factory, ttl time.Duration) *Resolver {
	return &Resolver{
		api:   api,
		ttl:   ttl,
		cache: make(map[string]cacheItem),
		now:   time.Now,
	}
}

// BySubdomain fetches the tenant for subdomain. A 404 from the backend is
// reported as models.ErrTenantNotFound; other errors are returned unchanged.
func (r *Resolver) BySubdomain(ctx context.Context, subdomain string) (models.Tenant, error) {
	if subdomain == "" {
		return models.Tenant{}, models.ErrTenantNotFound
	}
	if t, ok := r.cached(subdomain); ok {
		return t, nil
	}

	t, err := r.api.New(backend.Scope{}).TenantBySubdomain(ctx, subdomain)
	if err != nil {
		if backend.StatusOf(err) == http.StatusNotFound {
			return models.Tenant{}, fmt.Errorf("%w: %s", models.ErrTenantNotFound, subdomain)
		}
		slog.ErrorContext(ctx, "tenant lookup failed", "subdomain", subdomain, "err", err)
		return models.Tenant{}, err
	}
	if t.Subdomain == "" {
		t.Subdomain = subdomain
	}
	if r.ttl > 0 {
		r.mu.Lock()
		r.cache[subdomain] = cacheItem{tenant: t, expires: r.now().Add(r.ttl)}
		r.mu.Unlock()
	}
	return t, nil
}

// Invalidate drops a cached tenant, e.g. after its settings change.
func (r *Resolver) Invalidate(subdomain string) {
	r.mu.Lock()
	delete(r.cache, subdomain)
	r.mu.Unlock()
}

func (r *Resolver) cached(subdomain string) (models.Tenant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.cache[subdomain]
	if !ok || r.now().After(it.expires) {
		return models.Tenant{}, false
	}
	return it.tenant, true
}

// IsNotFound reports whether err means the subdomain has no store.
func IsNotFound(err error) bool { return errors.Is(err, models.ErrTenantNotFound) }

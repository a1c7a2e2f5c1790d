// internal/handlers/storefront/storefront.go
package storefront

import (
	"net/http"
	"strings"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	cartstore "github.com/LuisHerrera98/tiendagenai/internal/cart"
	httpserver "github.com/LuisHerrera98/tiendagenai/internal/http"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
	"github.com/LuisHerrera98/tiendagenai/internal/tenant"
)

type Handler struct {
	rootDomain string
}

func New(rootDomain string) *Handler {
	return &Handler{rootDomain: rootDomain}
}

// GET /landing
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	httpserver.JSON(w, http.StatusOK, map[string]any{
		"page":     "landing",
		"register": "/auth/register",
		"login":    "/auth/login",
		"domain":   h.rootDomain,
	})
}

// GET /store
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusNotFound, "store not found")
		return
	}
	count := 0
	if b, ok := auth.BucketFromContext(r.Context()); ok {
		c := cartstore.New(b)
		if err := c.Init(r.Context()); err == nil {
			count = c.ItemsCount()
		}
		c.Dispose()
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{
		"page":      "store",
		"tenant":    t,
		"cartItems": count,
		"storeURL":  h.storeURL(t.Subdomain),
	})
}

// GET /api/tenant
func (h *Handler) Tenant(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusNotFound, "store not found")
		return
	}
	httpserver.JSON(w, http.StatusOK, t)
}

// PUT /api/dev/subdomain { "subdomain": "demo" }
// Chooses the store served on localhost. An empty value clears it.
func (h *Handler) SetDevSubdomain(w http.ResponseWriter, r *http.Request) {
	b, ok := auth.BucketFromContext(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusInternalServerError, "client storage unavailable")
		return
	}
	var body struct {
		Subdomain string `json:"subdomain"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	sub := strings.ToLower(strings.TrimSpace(body.Subdomain))
	var err error
	switch {
	case sub == "":
		err = b.Remove(r.Context(), repo.KeyDevSubdomain)
	case !models.ValidSubdomain(sub):
		httpserver.Error(w, http.StatusBadRequest, "invalid subdomain")
		return
	default:
		err = b.Set(r.Context(), repo.KeyDevSubdomain, sub)
	}
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to store subdomain")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"subdomain": sub})
}

func (h *Handler) storeURL(sub string) string {
	if h.rootDomain == "" {
		return ""
	}
	return "https://" + sub + "." + h.rootDomain
}

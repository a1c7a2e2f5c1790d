package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
)

func TestClientContextIssuesCookie(t *testing.T) {
	store := repo.NewMemory()
	api := backend.NewFactory("http://backend.invalid", time.Second)

	var bucket *repo.Bucket
	h := ClientContext(store, api, auth.CookieOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket, _ = auth.BucketFromContext(r.Context())
		if _, ok := auth.SessionFromContext(r.Context()); !ok {
			t.Error("session missing from context")
		}
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	var issued *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieClientID {
			issued = c
		}
	}
	if issued == nil {
		t.Fatal("client_id cookie not issued")
	}
	if bucket == nil || bucket.ClientID().String() != issued.Value {
		t.Fatalf("bucket not bound to issued id")
	}

	// a returning client keeps its id
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(issued)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("returning client should not get a new cookie")
	}
	if bucket.ClientID().String() != issued.Value {
		t.Fatal("returning client mapped to a different bucket")
	}
}

func TestRequirePermission(t *testing.T) {
	store := repo.NewMemory()
	api := backend.NewFactory("http://backend.invalid", time.Second)
	id := uuid.New()
	b := repo.NewBucket(store, id)
	ctx := context.Background()
	_ = b.Set(ctx, repo.KeyAuthToken, "tok")
	_ = b.Set(ctx, repo.KeyUser, `{"id":"u1","email":"a@b.c","role":"custom","permissions":["orders.view"]}`)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	chain := func(h http.Handler) http.Handler {
		return ClientContext(store, api, auth.CookieOptions{})(h)
	}

	do := func(h http.Handler, withCookie bool) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/navigation", nil)
		if withCookie {
			req.AddCookie(&http.Cookie{Name: auth.CookieClientID, Value: id.String()})
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(chain(RequireAuth(ok)), false); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", code)
	}
	if code := do(chain(RequirePermission(models.PermOrdersView)(ok)), true); code != http.StatusNoContent {
		t.Fatalf("granted: expected 204, got %d", code)
	}
	if code := do(chain(RequirePermission(models.PermUsersView)(ok)), true); code != http.StatusForbidden {
		t.Fatalf("missing permission: expected 403, got %d", code)
	}
}

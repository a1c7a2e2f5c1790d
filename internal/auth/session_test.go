package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
)

const storedUser = `{"id":"u1","email":"ana@example.com","name":"Ana","role":"admin",
"tenants":[{"id":"t1","subdomain":"a","storeName":"A","isActive":false},
{"id":"t2","subdomain":"b","storeName":"B","isActive":true}]}`

func fakeBackend(t *testing.T) *backend.Factory {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var cr backend.Credentials
		_ = json.NewDecoder(req.Body).Decode(&cr)
		if cr.Password != "secreto" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Credenciales inválidas"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","user":{"id":"u2","email":"` + cr.Email + `","name":"Vero",
			"role":"vendedor","permissions":["products.view","sales.create","bogus.perm"],
			"tenants":[{"id":"t9","subdomain":"vero","storeName":"Vero"}]}}`))
	})
	r.Post("/auth/register", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Código enviado"}`))
	})
	r.Post("/auth/verify-email", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["code"] != "123456" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Código inválido"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-new","user":{"id":"u3","email":"` + body["email"] + `","role":"admin",
			"tenants":[{"id":"t5","subdomain":"nueva","storeName":"Nueva"}]}}`))
	})
	r.Post("/auth/forgot-password", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/auth/reset-password", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["email"] != "ana@example.com" || body["code"] != "123456" || body["newPassword"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/tenant/switch", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer tok-0" || req.Header.Get(backend.HeaderTenantID) != "t2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"t1","subdomain":"a","storeName":"A","isActive":true}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return backend.NewFactory(srv.URL, time.Second)
}

func newBucket() *repo.Bucket {
	return repo.NewBucket(repo.NewMemory(), uuid.New())
}

func TestInitSelectsFlaggedTenant(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	_ = b.Set(ctx, repo.KeyAuthToken, "tok-0")
	_ = b.Set(ctx, repo.KeyUser, storedUser)

	s := NewSession(b, fakeBackend(t))
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	snap := s.Snapshot()
	if snap.Tenant == nil || snap.Tenant.ID != "t2" {
		t.Fatalf("expected active tenant t2, got %+v", snap.Tenant)
	}
	if got := b.Lookup(ctx, repo.KeyTenantSubdomain); got != "b" {
		t.Fatalf("tenant_subdomain mismatch: got %q want b", got)
	}
	if !s.HasPermission(models.PermUsersDelete) {
		t.Fatal("admin should pass every permission check")
	}
}

func TestInitFallsBackToFirstTenant(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	_ = b.Set(ctx, repo.KeyAuthToken, "tok-0")
	_ = b.Set(ctx, repo.KeyUser, `{"id":"u1","email":"a@b.c","role":"custom","tenants":[{"id":"t1","subdomain":"a"},{"id":"t2","subdomain":"b"}]}`)

	s := NewSession(b, fakeBackend(t))
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if got := b.Lookup(ctx, repo.KeyTenantSubdomain); got != "a" {
		t.Fatalf("tenant_subdomain mismatch: got %q want a", got)
	}
	var u models.User
	_ = json.Unmarshal([]byte(b.Lookup(ctx, repo.KeyUser)), &u)
	if !u.Tenants[0].IsActive || u.Tenants[1].IsActive {
		t.Fatalf("expected exactly the first tenant flagged active, got %+v", u.Tenants)
	}
}

func TestInitDiscardsCorruptState(t *testing.T) {
	ctx := context.Background()
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	cases := map[string]struct{ token, user string }{
		"malformed user":  {"tok-0", `{"id":`},
		"user without id": {"tok-0", `{"email":"a@b.c"}`},
		"missing token":   {"", storedUser},
		"expired token":   {expired, storedUser},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			b := newBucket()
			if tc.token != "" {
				_ = b.Set(ctx, repo.KeyAuthToken, tc.token)
			}
			_ = b.Set(ctx, repo.KeyUser, tc.user)
			_ = b.Set(ctx, repo.KeyTenantSubdomain, "b")

			s := NewSession(b, fakeBackend(t))
			if err := s.Init(ctx); err != nil {
				t.Fatalf("Init should fail closed without error, got %v", err)
			}
			if s.Authenticated() {
				t.Fatal("expected logged out session")
			}
			for _, k := range sessionKeys {
				if _, err := b.Get(ctx, k); !errors.Is(err, repo.ErrNotFound) {
					t.Fatalf("key %s should be cleared, got %v", k, err)
				}
			}
		})
	}
}

func TestLoginStoresSession(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	s := NewSession(b, fakeBackend(t))
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	next, err := s.Login(ctx, backend.Credentials{Email: " Vero@Example.com ", Password: "secreto"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if next != DashboardPath {
		t.Fatalf("redirect mismatch: %q", next)
	}
	if b.Lookup(ctx, repo.KeyAuthToken) != "tok-1" {
		t.Fatal("token not stored")
	}
	if b.Lookup(ctx, repo.KeyTenantSubdomain) != "vero" {
		t.Fatal("tenant subdomain not stored")
	}
	snap := s.Snapshot()
	if snap.Role != models.RoleVendor {
		t.Fatalf("role mismatch: %q", snap.Role)
	}
	if len(snap.Permissions) != 2 {
		t.Fatalf("unknown permissions should be dropped, got %v", snap.Permissions)
	}
	if !s.HasPermission(models.PermProductsView) || s.HasPermission(models.PermUsersView) {
		t.Fatal("permission checks do not match the granted set")
	}
	if c := s.Client(); c.Scope().Token != "tok-1" || c.Scope().TenantID != "t9" {
		t.Fatalf("scoped client mismatch: %+v", c.Scope())
	}
}

func TestLoginPropagatesBackendError(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	s := NewSession(b, fakeBackend(t))

	_, err := s.Login(ctx, backend.Credentials{Email: "vero@example.com", Password: "mal"})
	var he *backend.HTTPError
	if !errors.As(err, &he) || he.Status != http.StatusUnauthorized {
		t.Fatalf("expected backend 401, got %v", err)
	}
	if s.Authenticated() || b.Lookup(ctx, repo.KeyAuthToken) != "" {
		t.Fatal("failed login must not store a session")
	}
}

func TestRegisterDoesNotTouchSession(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	s := NewSession(b, fakeBackend(t))

	_, err := s.Register(ctx, backend.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secreto", StoreName: "Ana", Subdomain: "Mi_Tienda"})
	if !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm for bad subdomain, got %v", err)
	}

	payload, err := s.Register(ctx, backend.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secreto", StoreName: "Ana", Subdomain: "mi-tienda"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected backend payload")
	}
	if s.Authenticated() || b.Lookup(ctx, repo.KeyUser) != "" {
		t.Fatal("register must not create a session")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	_ = b.Set(ctx, repo.KeyAuthToken, "tok-0")
	_ = b.Set(ctx, repo.KeyUser, storedUser)
	s := NewSession(b, fakeBackend(t))
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	next, err := s.Logout(ctx)
	if err != nil || next != LogoutPath {
		t.Fatalf("Logout = %q, %v", next, err)
	}
	for _, k := range sessionKeys {
		if b.Lookup(ctx, k) != "" {
			t.Fatalf("key %s still present after logout", k)
		}
	}
	for _, p := range models.Permissions() {
		if s.HasPermission(p) {
			t.Fatalf("HasPermission(%s) true after logout", p)
		}
	}
}

func TestSwitchAndUpdateTenant(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	_ = b.Set(ctx, repo.KeyAuthToken, "tok-0")
	_ = b.Set(ctx, repo.KeyUser, storedUser)
	s := NewSession(b, fakeBackend(t))
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	if _, err := s.SwitchTenant(ctx, "t404"); !errors.Is(err, ErrUnknownTenant) {
		t.Fatalf("expected ErrUnknownTenant, got %v", err)
	}
	tn, err := s.SwitchTenant(ctx, "t1")
	if err != nil {
		t.Fatalf("SwitchTenant returned error: %v", err)
	}
	if tn.Subdomain != "a" || b.Lookup(ctx, repo.KeyTenantSubdomain) != "a" {
		t.Fatalf("switch not persisted: %+v", tn)
	}
	snap := s.Snapshot()
	active := 0
	for _, x := range snap.User.Tenants {
		if x.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active tenant, got %d", active)
	}

	name := "Nueva A"
	tn, err = s.UpdateTenant(ctx, TenantPatch{StoreName: &name})
	if err != nil {
		t.Fatalf("UpdateTenant returned error: %v", err)
	}
	if tn.StoreName != name || tn.Subdomain != "a" {
		t.Fatalf("shallow merge mismatch: %+v", tn)
	}
}

func TestResetPasswordNeedsEmail(t *testing.T) {
	s := NewSession(newBucket(), fakeBackend(t))
	if err := s.ResetPassword(context.Background(), "123456", "nuevaclave"); !errors.Is(err, ErrNoResetPending) {
		t.Fatalf("expected ErrNoResetPending, got %v", err)
	}
}

func TestVerifyEmailEstablishesSession(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	s := NewSession(b, fakeBackend(t))
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	if _, err := s.VerifyEmail(ctx, "nueva@example.com", "999999"); backend.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected backend 400, got %v", err)
	}
	if s.Authenticated() {
		t.Fatal("failed verification must not sign in")
	}

	next, err := s.VerifyEmail(ctx, " Nueva@Example.com ", "123456")
	if err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}
	if next != DashboardPath {
		t.Fatalf("redirect mismatch: %q", next)
	}
	if s.Token() != "tok-new" || b.Lookup(ctx, repo.KeyAuthToken) != "tok-new" {
		t.Fatal("token not stored")
	}
	if b.Lookup(ctx, repo.KeyTenantSubdomain) != "nueva" {
		t.Fatalf("tenant_subdomain mismatch: %q", b.Lookup(ctx, repo.KeyTenantSubdomain))
	}
	if snap := s.Snapshot(); snap.User == nil || snap.User.Email != "nueva@example.com" || snap.Role != models.RoleAdmin {
		t.Fatalf("session mismatch: %+v", snap)
	}
}

func TestForgotThenResetPassword(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	s := NewSession(b, fakeBackend(t))

	if err := s.ForgotPassword(ctx, "not-an-email"); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
	if err := s.ForgotPassword(ctx, "Ana@Example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	if got := b.Lookup(ctx, repo.KeyResetEmail); got != "ana@example.com" {
		t.Fatalf("reset_email mismatch: %q", got)
	}

	if err := s.ResetPassword(ctx, "123456", "corta"); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm for short password, got %v", err)
	}
	if b.Lookup(ctx, repo.KeyResetEmail) == "" {
		t.Fatal("reset_email dropped by a rejected attempt")
	}
	if err := s.ResetPassword(ctx, "123456", "nuevaclave"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if _, err := b.Get(ctx, repo.KeyResetEmail); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("reset_email should be removed, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	live, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}).SignedString([]byte("k"))
	if tokenExpired(live, now) {
		t.Fatal("live token reported expired")
	}
	if tokenExpired("opaque-token", now) {
		t.Fatal("opaque token reported expired")
	}
}

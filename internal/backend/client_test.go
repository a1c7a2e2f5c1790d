package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LuisHerrera98/tiendagenai/internal/models"
)

func TestScopedHeaders(t *testing.T) {
	var gotAuth, gotTenant, gotRID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(HeaderAuthorization)
		gotRID = r.Header.Get(HeaderRequestID)
		gotTenant = r.Header.Get(HeaderTenantID)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"t1","subdomain":"tienda","storeName":"Tienda"}`))
	}))
	defer srv.Close()

	f := NewFactory(srv.URL, time.Second)

	ctx := WithRequestID(context.Background(), "rid-1")
	tn, err := f.New(Scope{Token: "tok", TenantID: "t1"}).TenantBySubdomain(ctx, "tienda")
	if err != nil {
		t.Fatalf("TenantBySubdomain returned error: %v", err)
	}
	if tn.StoreName != "Tienda" {
		t.Fatalf("decoded tenant mismatch: %+v", tn)
	}
	if gotAuth != "Bearer tok" || gotTenant != "t1" || gotRID != "rid-1" {
		t.Fatalf("headers mismatch: auth=%q tenant=%q request=%q", gotAuth, gotTenant, gotRID)
	}

	// an unscoped client from the same factory must not inherit headers
	if _, err := f.New(Scope{}).TenantBySubdomain(context.Background(), "tienda"); err != nil {
		t.Fatalf("unscoped call returned error: %v", err)
	}
	if gotAuth != "" || gotTenant != "" {
		t.Fatalf("unscoped client leaked headers: auth=%q tenant=%q", gotAuth, gotTenant)
	}
}

func TestHTTPErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Credenciales inválidas","statusCode":401}`))
	}))
	defer srv.Close()

	_, err := NewFactory(srv.URL, time.Second).New(Scope{}).Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if he.Status != http.StatusUnauthorized || he.Message != "Credenciales inválidas" {
		t.Fatalf("unexpected error: %+v", he)
	}
	if StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("StatusOf mismatch: %d", StatusOf(err))
	}
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/public/tienda/orders" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"o1","status":"pending","total":100}`))
	}))
	defer srv.Close()

	o, err := NewFactory(srv.URL, time.Second).New(Scope{}).CreateOrder(context.Background(), "tienda", models.OrderRequest{})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if o.ID != "o1" || o.Status != models.OrderPending {
		t.Fatalf("unexpected order: %+v", o)
	}
}

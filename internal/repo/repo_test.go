package repo

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type record struct {
	Name string `json:"name"`
}

func TestBucketIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewMemory()
	a := NewBucket(r, uuid.New())
	b := NewBucket(r, uuid.New())

	if err := a.Set(ctx, KeyCart, "[]"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if _, err := b.Get(ctx, KeyCart); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from other bucket, got %v", err)
	}
	if got := a.Lookup(ctx, KeyCart); got != "[]" {
		t.Fatalf("Lookup mismatch: got %q", got)
	}

	if err := a.Remove(ctx, KeyCart, KeyUser); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if got := a.Lookup(ctx, KeyCart); got != "" {
		t.Fatalf("expected empty after remove, got %q", got)
	}
}

func TestDecode(t *testing.T) {
	ctx := context.Background()
	b := NewBucket(NewMemory(), uuid.New())
	notEmpty := func(r record) error {
		if r.Name == "" {
			return errors.New("name is empty")
		}
		return nil
	}

	if _, found, err := Decode(ctx, b, KeyUser, notEmpty); found || err != nil {
		t.Fatalf("missing key: found=%v err=%v", found, err)
	}

	_ = b.Set(ctx, KeyUser, "{not json")
	if _, found, err := Decode(ctx, b, KeyUser, notEmpty); !found || err == nil {
		t.Fatalf("malformed value: found=%v err=%v", found, err)
	}

	_ = b.SetJSON(ctx, KeyUser, record{})
	if _, _, err := Decode(ctx, b, KeyUser, notEmpty); err == nil {
		t.Fatal("expected validation error for empty name")
	}

	_ = b.SetJSON(ctx, KeyUser, record{Name: "ana"})
	v, found, err := Decode(ctx, b, KeyUser, notEmpty)
	if err != nil || !found || v.Name != "ana" {
		t.Fatalf("Decode = %+v, %v, %v", v, found, err)
	}
}

func TestPostgresRepo(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	r := NewPostgres(pool)
	id := uuid.New()
	if err := r.Set(ctx, id, KeyTenantSubdomain, "a"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := r.Set(ctx, id, KeyTenantSubdomain, "b"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, err := r.Get(ctx, id, KeyTenantSubdomain); err != nil || v != "b" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	if err := r.Remove(ctx, id, KeyTenantSubdomain); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := r.Get(ctx, id, KeyTenantSubdomain); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

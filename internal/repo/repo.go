// internal/repo/repo.go
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Keys written into a client bucket.
const (
	KeyAuthToken       = "auth_token"
	KeyUser            = "user"
	KeyTenantSubdomain = "tenant_subdomain"
	KeyCart            = "cart"
	KeyResetEmail      = "reset_email"
	KeyDevSubdomain    = "dev_subdomain"
)

// LastOrderKey is the key holding the last order placed on a storefront.
func LastOrderKey(subdomain string) string { return "lastOrder_" + subdomain }

// OrderKey is the key holding a snapshot of a single order.
func OrderKey(orderID string) string { return "order_" + orderID }

var ErrNotFound = errors.New("key not found")

// Repo defines the storage the rest of the app uses. Every value lives in the
// bucket of one client (one browser).
type Repo interface {
	Get(ctx context.Context, clientID uuid.UUID, key string) (string, error)
	Set(ctx context.Context, clientID uuid.UUID, key, value string) error
	Remove(ctx context.Context, clientID uuid.UUID, keys ...string) error
}

// Bucket is a Repo bound to a single client.
type Bucket struct {
	r        Repo
	clientID uuid.UUID
}

func NewBucket(r Repo, clientID uuid.UUID) *Bucket {
	return &Bucket{r: r, clientID: clientID}
}

func (b *Bucket) ClientID() uuid.UUID { return b.clientID }

func (b *Bucket) Get(ctx context.Context, key string) (string, error) {
	return b.r.Get(ctx, b.clientID, key)
}

// Lookup returns "" for a missing key and logs other failures.
func (b *Bucket) Lookup(ctx context.Context, key string) string {
	v, err := b.r.Get(ctx, b.clientID, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.ErrorContext(ctx, "bucket lookup failed", "key", key, "err", err)
		}
		return ""
	}
	return v
}

func (b *Bucket) Set(ctx context.Context, key, value string) error {
	return b.r.Set(ctx, b.clientID, key, value)
}

func (b *Bucket) Remove(ctx context.Context, keys ...string) error {
	return b.r.Remove(ctx, b.clientID, keys...)
}

// SetJSON stores v encoded as JSON.
func (b *Bucket) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return b.Set(ctx, key, string(raw))
}

// Decode reads key and parses it into T, running validate when given.
// It reports found=false for a missing key. A present value that does not
// parse or validate returns an error naming the reason; callers decide how
// to fail closed.
func Decode[T any](ctx context.Context, b *Bucket, key string, validate func(T) error) (T, bool, error) {
	var zero T
	raw, err := b.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return zero, true, fmt.Errorf("malformed %s: %w", key, err)
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return zero, true, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return v, true, nil
}

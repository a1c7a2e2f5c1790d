package auth

import (
	"context"

	"github.com/LuisHerrera98/tiendagenai/internal/repo"
)

type ctxKeySession struct{}
type ctxKeyBucket struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKeySession{}).(*Session)
	return s, ok && s != nil
}

// WithBucket stores the storage bucket of the requesting client.
func WithBucket(ctx context.Context, b *repo.Bucket) context.Context {
	return context.WithValue(ctx, ctxKeyBucket{}, b)
}

func BucketFromContext(ctx context.Context) (*repo.Bucket, bool) {
	b, ok := ctx.Value(ctxKeyBucket{}).(*repo.Bucket)
	return b, ok && b != nil
}

package tenant

import (
	"context"

	"github.com/LuisHerrera98/tiendagenai/internal/models"
)

type ctxKey struct{}

// WithTenant stores the resolved storefront tenant in ctx.
func WithTenant(ctx context.Context, t *models.Tenant) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

func FromContext(ctx context.Context) (*models.Tenant, bool) {
	t, ok := ctx.Value(ctxKey{}).(*models.Tenant)
	return t, ok && t != nil
}

// Package cart holds the shopping cart of one client. The collection is
// persisted under the "cart" key after every mutation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/LuisHerrera98/tiendagenai/internal/models"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
)

var ErrInvalidItem = errors.New("invalid cart item")

type Cart struct {
	mu     sync.Mutex
	bucket *repo.Bucket
	items  []models.CartItem
	loaded bool
}

func New(bucket *repo.Bucket) *Cart {
	return &Cart{bucket: bucket}
}

// Init hydrates the cart from the bucket. It only reads storage once; later
// calls are no-ops. A stored value that fails validation is discarded and
// the cart starts empty.
func (c *Cart) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}
	items, found, err := repo.Decode(ctx, c.bucket, repo.KeyCart, validateItems)
	switch {
	case err != nil && found:
		slog.WarnContext(ctx, "discarding stored cart", "client_id", c.bucket.ClientID().String(), "reason", err.Error())
		items = nil
	case err != nil:
		return fmt.Errorf("load cart: %w", err)
	}
	c.items = items
	c.loaded = true
	return nil
}

// Dispose drops the in-memory copy. The persisted cart is left untouched.
func (c *Cart) Dispose() {
	c.mu.Lock()
	c.items = nil
	c.loaded = false
	c.mu.Unlock()
}

// AddItem appends item, or increments the quantity of the line with the same
// (productId, sizeId). A merge past models.MaxQuantity is rejected.
func (c *Cart) AddItem(ctx context.Context, item models.CartItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(item.ProductID, item.SizeID); i >= 0 {
		if c.items[i].Quantity > models.MaxQuantity-item.Quantity {
			return fmt.Errorf("%w: quantity is too large", ErrInvalidItem)
		}
		c.items[i].Quantity += item.Quantity
	} else {
		c.items = append(c.items, item)
	}
	return c.persist(ctx)
}

// RemoveItem deletes the matching line; absent lines are a no-op.
func (c *Cart) RemoveItem(ctx context.Context, productID, sizeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(ctx, productID, sizeID)
}

// UpdateQuantity overwrites the quantity of a line. A quantity <= 0 removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, productID, sizeID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		return c.remove(ctx, productID, sizeID)
	}
	if quantity > models.MaxQuantity {
		return fmt.Errorf("%w: quantity is too large", ErrInvalidItem)
	}
	i := c.indexOf(productID, sizeID)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity = quantity
	return c.persist(ctx)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return c.persist(ctx)
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the sum of price*quantity, without discounts.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func (c *Cart) TotalWithDiscount() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// ItemsCount is the sum of quantities, not the number of lines.
func (c *Cart) ItemsCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) remove(ctx context.Context, productID, sizeID string) error {
	i := c.indexOf(productID, sizeID)
	if i < 0 {
		return nil
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.persist(ctx)
}

func (c *Cart) indexOf(productID, sizeID string) int {
	for i, it := range c.items {
		if it.ProductID == productID && it.SizeID == sizeID {
			return i
		}
	}
	return -1
}

func (c *Cart) persist(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []models.CartItem{}
	}
	if err := c.bucket.SetJSON(ctx, repo.KeyCart, items); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func validateItems(items []models.CartItem) error {
	seen := make(map[[2]string]struct{}, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		k := [2]string{it.ProductID, it.SizeID}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("item %d: duplicate product/size", i)
		}
		seen[k] = struct{}{}
	}
	return nil
}

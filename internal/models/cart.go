package models

import (
	"errors"
	"math"
	"strings"
)

// Line limits. They keep quantities from wrapping and totals finite.
const (
	MaxQuantity = 10000
	MaxPrice    = 1e12
)

type CartItem struct {
	ProductID   string  `json:"productId"`
	SizeID      string  `json:"sizeId"`
	ProductName string  `json:"productName"`
	SizeName    string  `json:"sizeName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	Image       string  `json:"image,omitempty"`
}

// Validate enforces the line item invariants: ids present, quantity in
// 1..MaxQuantity, price in 0..MaxPrice and discount within 0..100.
func (c CartItem) Validate() error {
	switch {
	case strings.TrimSpace(c.ProductID) == "":
		return errors.New("productId is required")
	case strings.TrimSpace(c.SizeID) == "":
		return errors.New("sizeId is required")
	case c.Quantity <= 0:
		return errors.New("quantity must be positive")
	case c.Quantity > MaxQuantity:
		return errors.New("quantity is too large")
	case math.IsNaN(c.Price) || c.Price < 0:
		return errors.New("price must not be negative")
	case c.Price > MaxPrice:
		return errors.New("price is too large")
	case c.Discount < 0 || c.Discount > 100:
		return errors.New("discount must be between 0 and 100")
	}
	return nil
}

// Subtotal is price*quantity with the line discount applied.
func (c CartItem) Subtotal() float64 {
	return c.Price * float64(c.Quantity) * (1 - c.Discount/100)
}

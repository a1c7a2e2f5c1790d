package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderPending:   "Pendiente",
	OrderConfirmed: "Confirmado",
	OrderShipped:   "Enviado",
	OrderDelivered: "Entregado",
}

// Label returns the display label; unknown statuses are shown as-is.
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Step is the 1-based position in the tracking timeline, 0 when unknown.
func (s OrderStatus) Step() int {
	switch s {
	case OrderPending:
		return 1
	case OrderConfirmed:
		return 2
	case OrderShipped:
		return 3
	case OrderDelivered:
		return 4
	}
	return 0
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type OrderLine struct {
	ProductID   string  `json:"productId"`
	SizeID      string  `json:"sizeId"`
	ProductName string  `json:"productName"`
	SizeName    string  `json:"sizeName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
}

type OrderRequest struct {
	Customer      Customer    `json:"customer"`
	Items         []OrderLine `json:"items"`
	PaymentMethod string      `json:"paymentMethod"`
	Total         float64     `json:"total"`
}

type Order struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"orderNumber,omitempty"`
	Status      OrderStatus `json:"status"`
	Total       float64     `json:"total"`
	Customer    Customer    `json:"customer"`
	Items       []OrderLine `json:"items,omitempty"`
	PaymentURL  string      `json:"paymentUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt,omitempty"`
}

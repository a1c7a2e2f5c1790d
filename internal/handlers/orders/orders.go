// internal/handlers/orders/orders.go
package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	cartstore "github.com/LuisHerrera98/tiendagenai/internal/cart"
	"github.com/LuisHerrera98/tiendagenai/internal/events"
	httpserver "github.com/LuisHerrera98/tiendagenai/internal/http"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
	"github.com/LuisHerrera98/tiendagenai/internal/tenant"
)

var paymentMethods = map[string]bool{
	"cash":        true,
	"transfer":    true,
	"mercadopago": true,
}

type Handler struct {
	api    *backend.Factory
	events events.Publisher
}

func New(api *backend.Factory, pub events.Publisher) *Handler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Handler{api: api, events: pub}
}

type checkoutRequest struct {
	Customer      models.Customer `json:"customer"`
	PaymentMethod string          `json:"paymentMethod"`
}

// storefront returns the tenant and client bucket every handler here needs.
func storefront(w http.ResponseWriter, r *http.Request) (*models.Tenant, *repo.Bucket, bool) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusNotFound, "store not found")
		return nil, nil, false
	}
	b, ok := auth.BucketFromContext(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusInternalServerError, "client storage unavailable")
		return nil, nil, false
	}
	return t, b, true
}

// POST /api/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	t, b, ok := storefront(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateCheckout(&req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	c := cartstore.New(b)
	if err := c.Init(r.Context()); err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	defer c.Dispose()
	items := c.Items()
	if len(items) == 0 {
		httpserver.Error(w, http.StatusBadRequest, "cart is empty")
		return
	}

	orderReq := models.OrderRequest{
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		Total:         c.TotalWithDiscount(),
		Items:         make([]models.OrderLine, 0, len(items)),
	}
	for _, it := range items {
		orderReq.Items = append(orderReq.Items, models.OrderLine{
			ProductID:   it.ProductID,
			SizeID:      it.SizeID,
			ProductName: it.ProductName,
			SizeName:    it.SizeName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Discount:    it.Discount,
		})
	}

	order, err := h.api.New(backend.Scope{TenantID: t.ID}).CreateOrder(r.Context(), t.Subdomain, orderReq)
	if err != nil {
		httpserver.BackendError(w, err)
		return
	}

	ctx := r.Context()
	if err := b.SetJSON(ctx, repo.OrderKey(order.ID), order); err != nil {
		slog.ErrorContext(ctx, "store order snapshot failed", "order_id", order.ID, "err", err)
	}
	if err := b.SetJSON(ctx, repo.LastOrderKey(t.Subdomain), order); err != nil {
		slog.ErrorContext(ctx, "store last order failed", "order_id", order.ID, "err", err)
	}
	h.publish(r, t, order, items)

	// Redirect payments clear the cart once the provider reports approval.
	if order.PaymentURL != "" {
		httpserver.Navigate(w, r, order.PaymentURL, map[string]any{"order": order})
		return
	}
	if err := c.Clear(ctx); err != nil {
		slog.ErrorContext(ctx, "clear cart after checkout failed", "order_id", order.ID, "err", err)
	}
	httpserver.JSON(w, http.StatusCreated, map[string]any{"order": order})
}

// GET /api/checkout/result?order={id}&status={approved|pending|rejected}
func (h *Handler) PaymentResult(w http.ResponseWriter, r *http.Request) {
	_, b, ok := storefront(w, r)
	if !ok {
		return
	}
	orderID := strings.TrimSpace(r.URL.Query().Get("order"))
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if orderID == "" {
		httpserver.Error(w, http.StatusBadRequest, "order is required")
		return
	}
	order, found, err := repo.Decode[models.Order](r.Context(), b, repo.OrderKey(orderID), nil)
	if err != nil || !found {
		httpserver.Error(w, http.StatusNotFound, "order not found")
		return
	}

	if status == "approved" {
		c := cartstore.New(b)
		err = c.Init(r.Context())
		if err == nil {
			err = c.Clear(r.Context())
		}
		c.Dispose()
		if err != nil {
			slog.ErrorContext(r.Context(), "clear cart after payment failed", "order_id", orderID, "err", err)
		}
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{
		"order":         order,
		"paymentStatus": status,
	})
}

// GET /api/orders/last
func (h *Handler) Last(w http.ResponseWriter, r *http.Request) {
	t, b, ok := storefront(w, r)
	if !ok {
		return
	}
	order, found, err := repo.Decode[models.Order](r.Context(), b, repo.LastOrderKey(t.Subdomain), nil)
	if err != nil {
		slog.WarnContext(r.Context(), "discarding stored last order", "reason", err.Error())
		if rerr := b.Remove(r.Context(), repo.LastOrderKey(t.Subdomain)); rerr != nil {
			slog.ErrorContext(r.Context(), "remove stored last order failed", "subdomain", t.Subdomain, "err", rerr)
		}
	}
	if err != nil || !found {
		httpserver.Error(w, http.StatusNotFound, "no orders yet")
		return
	}
	httpserver.JSON(w, http.StatusOK, tracking(order))
}

// GET /api/orders/{orderID}
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	t, b, ok := storefront(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderID")
	order, err := h.api.New(backend.Scope{TenantID: t.ID}).GetOrder(r.Context(), t.Subdomain, orderID)
	if err != nil {
		httpserver.BackendError(w, err)
		return
	}
	if err := b.SetJSON(r.Context(), repo.OrderKey(order.ID), order); err != nil {
		slog.ErrorContext(r.Context(), "refresh order snapshot failed", "order_id", order.ID, "err", err)
	}
	httpserver.JSON(w, http.StatusOK, tracking(order))
}

func tracking(o models.Order) map[string]any {
	return map[string]any{
		"order":       o,
		"statusLabel": o.Status.Label(),
		"step":        o.Status.Step(),
	}
}

func (h *Handler) publish(r *http.Request, t *models.Tenant, o models.Order, items []models.CartItem) {
	e := events.OrderPlaced{
		OrderID:   o.ID,
		TenantID:  t.ID,
		Subdomain: t.Subdomain,
		Total:     o.Total,
		PlacedAt:  time.Now().UTC(),
	}
	for _, it := range items {
		e.Items = append(e.Items, events.OrderItem{ProductID: it.ProductID, SizeID: it.SizeID, Quantity: it.Quantity})
	}
	if err := h.events.PublishOrderPlaced(r.Context(), e); err != nil {
		slog.ErrorContext(r.Context(), "publish order placed failed", "order_id", o.ID, "err", err)
	}
}

func validateCheckout(req *checkoutRequest) error {
	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	switch {
	case req.Customer.Name == "":
		return errors.New("customer name is required")
	case req.Customer.Phone == "":
		return errors.New("customer phone is required")
	case !paymentMethods[req.PaymentMethod]:
		return errors.New("unsupported payment method")
	}
	return nil
}

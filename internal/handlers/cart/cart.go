// internal/handlers/cart/cart.go
package cart

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	cartstore "github.com/LuisHerrera98/tiendagenai/internal/cart"
	httpserver "github.com/LuisHerrera98/tiendagenai/internal/http"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// load returns the hydrated cart of the requesting client.
func load(w http.ResponseWriter, r *http.Request) (*cartstore.Cart, bool) {
	b, ok := auth.BucketFromContext(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusInternalServerError, "client storage unavailable")
		return nil, false
	}
	c := cartstore.New(b)
	if err := c.Init(r.Context()); err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to load cart")
		return nil, false
	}
	return c, true
}

func writeCart(w http.ResponseWriter, status int, c *cartstore.Cart) {
	httpserver.JSON(w, status, map[string]any{
		"items":             c.Items(),
		"total":             c.Total(),
		"totalWithDiscount": c.TotalWithDiscount(),
		"itemsCount":        c.ItemsCount(),
	})
}

// GET /api/cart
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := load(w, r)
	if !ok {
		return
	}
	defer c.Dispose()
	writeCart(w, http.StatusOK, c)
}

// POST /api/cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item models.CartItem
	if err := httpserver.Decode(w, r, &item); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	c, ok := load(w, r)
	if !ok {
		return
	}
	defer c.Dispose()

	if err := c.AddItem(r.Context(), item); err != nil {
		if errors.Is(err, cartstore.ErrInvalidItem) {
			httpserver.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		httpserver.Error(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	writeCart(w, http.StatusOK, c)
}

// PATCH /api/cart/items/{productID}/{sizeID}
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	c, ok := load(w, r)
	if !ok {
		return
	}
	defer c.Dispose()

	if err := c.UpdateQuantity(r.Context(), chi.URLParam(r, "productID"), chi.URLParam(r, "sizeID"), req.Quantity); err != nil {
		if errors.Is(err, cartstore.ErrInvalidItem) {
			httpserver.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		httpserver.Error(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	writeCart(w, http.StatusOK, c)
}

// DELETE /api/cart/items/{productID}/{sizeID}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, ok := load(w, r)
	if !ok {
		return
	}
	defer c.Dispose()

	if err := c.RemoveItem(r.Context(), chi.URLParam(r, "productID"), chi.URLParam(r, "sizeID")); err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	writeCart(w, http.StatusOK, c)
}

// DELETE /api/cart
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	c, ok := load(w, r)
	if !ok {
		return
	}
	defer c.Dispose()

	if err := c.Clear(r.Context()); err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	writeCart(w, http.StatusOK, c)
}

package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/LuisHerrera98/tiendagenai/internal/models"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	StoreName string `json:"storeName"`
	Subdomain string `json:"subdomain"`
}

// AuthResponse is what login and email verification return.
type AuthResponse struct {
	Token string      `json:"access_token"`
	User  models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, cr Credentials) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", cr, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodPost, "/auth/register", r, &out)
	return out, err
}

func (c *Client) VerifyEmail(ctx context.Context, email, code string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/verify-email", map[string]string{"email": email, "code": code}, &out)
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, code, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", map[string]string{
		"email":       email,
		"code":        code,
		"newPassword": password,
	}, nil)
}

// SwitchTenant asks the backend to make tenantID the active tenant of the
// authenticated user.
func (c *Client) SwitchTenant(ctx context.Context, tenantID string) (models.SimpleTenant, error) {
	var out models.SimpleTenant
	err := c.do(ctx, http.MethodPost, "/tenant/switch", map[string]string{"tenantId": tenantID}, &out)
	return out, err
}

func (c *Client) TenantBySubdomain(ctx context.Context, subdomain string) (models.Tenant, error) {
	var out models.Tenant
	err := c.do(ctx, http.MethodGet, "/tenant/subdomain/"+escape(subdomain), nil, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, subdomain string, req models.OrderRequest) (models.Order, error) {
	var out models.Order
	err := c.do(ctx, http.MethodPost, "/public/"+escape(subdomain)+"/orders", req, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, subdomain, orderID string) (models.Order, error) {
	var out models.Order
	err := c.do(ctx, http.MethodGet, "/public/"+escape(subdomain)+"/orders/"+escape(orderID), nil, &out)
	return out, err
}

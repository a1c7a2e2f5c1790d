// internal/handlers/session/session.go
package session

import (
	"errors"
	"net/http"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	httpserver "github.com/LuisHerrera98/tiendagenai/internal/http"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
	"github.com/LuisHerrera98/tiendagenai/internal/permission"
	"github.com/LuisHerrera98/tiendagenai/internal/tenant"
)

type Handler struct {
	cookies  auth.CookieOptions
	resolver *tenant.Resolver
}

// New builds the session handlers. resolver may be nil; when set, tenant
// edits drop the cached storefront so the store serves the new values.
func New(cookies auth.CookieOptions, resolver *tenant.Resolver) *Handler {
	return &Handler{cookies: cookies, resolver: resolver}
}

func current(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusInternalServerError, "session unavailable")
	}
	return s, ok
}

// writeErr maps session and backend failures to responses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidForm):
		httpserver.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrNotAuthenticated):
		httpserver.Error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, auth.ErrUnknownTenant):
		httpserver.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrNoResetPending):
		httpserver.Error(w, http.StatusConflict, err.Error())
	case backend.StatusOf(err) != 0:
		httpserver.BackendError(w, err)
	default:
		httpserver.Error(w, http.StatusInternalServerError, "session error")
	}
}

// POST /api/auth/login { "email": "...", "password": "..." }
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	var cr backend.Credentials
	if err := httpserver.Decode(w, r, &cr); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := s.Login(r.Context(), cr)
	if err != nil {
		writeErr(w, err)
		return
	}
	auth.SetAuthCookies(w, s.Token(), h.cookies)
	httpserver.Navigate(w, r, next, map[string]any{"session": s.Snapshot()})
}

// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	var req backend.RegisterRequest
	if err := httpserver.Decode(w, r, &req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	payload, err := s.Register(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}
	_, _ = w.Write(payload)
}

// POST /api/auth/verify-email { "email": "...", "code": "123456" }
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := s.VerifyEmail(r.Context(), body.Email, body.Code)
	if err != nil {
		writeErr(w, err)
		return
	}
	auth.SetAuthCookies(w, s.Token(), h.cookies)
	httpserver.Navigate(w, r, next, map[string]any{"session": s.Snapshot()})
}

// POST /api/auth/forgot-password { "email": "..." }
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ForgotPassword(r.Context(), body.Email); err != nil {
		writeErr(w, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /api/auth/reset-password { "code": "...", "password": "..." }
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	var body struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ResetPassword(r.Context(), body.Code, body.Password); err != nil {
		writeErr(w, err)
		return
	}
	httpserver.Navigate(w, r, "/auth/login", nil)
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	next, err := s.Logout(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	auth.ClearAuthCookies(w, h.cookies)
	httpserver.Navigate(w, r, next, nil)
}

// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	httpserver.JSON(w, http.StatusOK, s.Snapshot())
}

// POST /api/auth/permissions/check { "permissions": ["products.view", ...] }
// Answers whether any of the listed permissions is held.
func (h *Handler) CheckPermissions(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	var body struct {
		Permissions []string `json:"permissions"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	requested := make([]models.Permission, 0, len(body.Permissions))
	for _, raw := range body.Permissions {
		p, known := models.ParsePermission(raw)
		if !known {
			httpserver.Error(w, http.StatusBadRequest, "unknown permission: "+raw)
			return
		}
		requested = append(requested, p)
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"allowed": s.HasPermission(requested...)})
}

// POST /api/auth/tenant/switch { "tenantId": "..." }
func (h *Handler) SwitchTenant(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	var body struct {
		TenantID string `json:"tenantId"`
	}
	if err := httpserver.Decode(w, r, &body); err != nil || body.TenantID == "" {
		httpserver.Error(w, http.StatusBadRequest, "tenantId is required")
		return
	}
	t, err := s.SwitchTenant(r.Context(), body.TenantID)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"tenant": t})
}

// PATCH /api/auth/tenant { "storeName": "...", "subdomain": "..." }
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	var patch auth.TenantPatch
	if err := httpserver.Decode(w, r, &patch); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var before string
	if snap := s.Snapshot(); snap.Tenant != nil {
		before = snap.Tenant.Subdomain
	}
	t, err := s.UpdateTenant(r.Context(), patch)
	if err != nil {
		writeErr(w, err)
		return
	}
	if h.resolver != nil {
		h.resolver.Invalidate(before)
		h.resolver.Invalidate(t.Subdomain)
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"tenant": t})
}

// GET /api/admin/navigation
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	s, ok := current(w, r)
	if !ok {
		return
	}
	snap := s.Snapshot()
	httpserver.JSON(w, http.StatusOK, map[string]any{
		"entries": permission.FilterNav(permission.AdminNav, snap.Role, snap.Permissions),
	})
}

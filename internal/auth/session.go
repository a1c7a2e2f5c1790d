// internal/auth/session.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
	"github.com/LuisHerrera98/tiendagenai/internal/permission"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
)

const (
	DashboardPath = "/admin/dashboard"
	LogoutPath    = "/"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidForm      = errors.New("invalid form")
	ErrUnknownTenant    = errors.New("tenant does not belong to user")
	ErrNoResetPending   = errors.New("no password reset in progress")
)

// sessionKeys are cleared together on logout and on corrupt state.
var sessionKeys = []string{repo.KeyAuthToken, repo.KeyUser, repo.KeyTenantSubdomain}

// Session is the signed-in state of one client. It is created per request,
// loaded with Init and released with Dispose.
type Session struct {
	bucket *repo.Bucket
	api    *backend.Factory
	now    func() time.Time

	mu          sync.RWMutex
	token       string
	user        *models.User
	tenant      *models.SimpleTenant
	role        models.Role
	permissions []models.Permission
}

func NewSession(bucket *repo.Bucket, api *backend.Factory) *Session {
	return &Session{bucket: bucket, api: api, now: time.Now}
}

// Init loads token and user from the bucket. Anything unreadable, invalid or
// expired resets the client to logged out; the reason is logged, not returned.
// Only storage failures are returned.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.bucket.Get(ctx, repo.KeyAuthToken)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("load token: %w", err)
	}
	user, found, uerr := repo.Decode(ctx, s.bucket, repo.KeyUser, models.User.Validate)
	if uerr != nil && !found {
		return fmt.Errorf("load user: %w", uerr)
	}

	switch {
	case token == "" && !found:
		return nil
	case uerr != nil:
		return s.reset(ctx, uerr.Error())
	case token == "":
		return s.reset(ctx, "user stored without token")
	case !found:
		return s.reset(ctx, "token stored without user")
	case tokenExpired(token, s.now()):
		return s.reset(ctx, "token expired")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := activeCount(user.Tenants) != 1 && len(user.Tenants) > 0
	s.apply(token, user)
	if normalized {
		if err := s.bucket.SetJSON(ctx, repo.KeyUser, s.user); err != nil {
			return err
		}
	}
	return s.persistTenant(ctx)
}

// Dispose drops the in-memory state.
func (s *Session) Dispose() {
	s.mu.Lock()
	s.clear()
	s.mu.Unlock()
}

// Login authenticates against the backend and stores the session. It returns
// the path the client should navigate to. Backend errors are returned unchanged.
func (s *Session) Login(ctx context.Context, cr backend.Credentials) (string, error) {
	cr.Email = strings.ToLower(strings.TrimSpace(cr.Email))
	if cr.Email == "" || cr.Password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrInvalidForm)
	}
	resp, err := s.api.New(backend.Scope{}).Login(ctx, cr)
	if err != nil {
		return "", err
	}
	if err := s.establish(ctx, resp); err != nil {
		return "", err
	}
	return DashboardPath, nil
}

// Register starts the two-step sign up. The session is only created once the
// emailed code is verified.
func (s *Session) Register(ctx context.Context, req backend.RegisterRequest) (json.RawMessage, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subdomain = strings.ToLower(strings.TrimSpace(req.Subdomain))
	if err := validateRegister(req); err != nil {
		return nil, err
	}
	return s.api.New(backend.Scope{}).Register(ctx, req)
}

// VerifyEmail completes registration and signs the user in.
func (s *Session) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: email and code are required", ErrInvalidForm)
	}
	resp, err := s.api.New(backend.Scope{}).VerifyEmail(ctx, email, strings.TrimSpace(code))
	if err != nil {
		return "", err
	}
	if err := s.establish(ctx, resp); err != nil {
		return "", err
	}
	return DashboardPath, nil
}

// ForgotPassword requests a reset code and remembers the email for the
// reset step.
func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidForm)
	}
	if err := s.api.New(backend.Scope{}).ForgotPassword(ctx, email); err != nil {
		return err
	}
	return s.bucket.Set(ctx, repo.KeyResetEmail, email)
}

func (s *Session) ResetPassword(ctx context.Context, code, password string) error {
	email := s.bucket.Lookup(ctx, repo.KeyResetEmail)
	if email == "" {
		return ErrNoResetPending
	}
	if strings.TrimSpace(code) == "" || len(password) < 6 {
		return fmt.Errorf("%w: code and a password of at least 6 characters are required", ErrInvalidForm)
	}
	if err := s.api.New(backend.Scope{}).ResetPassword(ctx, email, strings.TrimSpace(code), password); err != nil {
		return err
	}
	return s.bucket.Remove(ctx, repo.KeyResetEmail)
}

// Logout removes every session key and returns the marketing root path.
func (s *Session) Logout(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.clear()
	s.mu.Unlock()
	if err := s.bucket.Remove(ctx, sessionKeys...); err != nil {
		return "", fmt.Errorf("logout: %w", err)
	}
	return LogoutPath, nil
}

// HasPermission reports whether the session satisfies any of requested.
// It is false when nobody is signed in.
func (s *Session) HasPermission(requested ...models.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	return permission.Allowed(s.role, s.permissions, requested...)
}

// TenantPatch holds the fields UpdateTenant may change; nil fields are kept.
type TenantPatch struct {
	StoreName *string `json:"storeName,omitempty"`
	Subdomain *string `json:"subdomain,omitempty"`
}

// UpdateTenant shallow-merges patch into the active tenant and stores the
// result so later requests see it.
func (s *Session) UpdateTenant(ctx context.Context, patch TenantPatch) (models.SimpleTenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.tenant == nil {
		return models.SimpleTenant{}, ErrNotAuthenticated
	}
	if patch.Subdomain != nil {
		sub := strings.ToLower(strings.TrimSpace(*patch.Subdomain))
		if !models.ValidSubdomain(sub) {
			return models.SimpleTenant{}, fmt.Errorf("%w: invalid subdomain", ErrInvalidForm)
		}
		s.tenant.Subdomain = sub
	}
	if patch.StoreName != nil {
		s.tenant.StoreName = *patch.StoreName
	}
	for i := range s.user.Tenants {
		if s.user.Tenants[i].ID == s.tenant.ID {
			s.user.Tenants[i] = *s.tenant
		}
	}
	if err := s.bucket.SetJSON(ctx, repo.KeyUser, s.user); err != nil {
		return models.SimpleTenant{}, err
	}
	return *s.tenant, s.persistTenant(ctx)
}

// SwitchTenant makes tenantID the active tenant, on the backend and locally.
func (s *Session) SwitchTenant(ctx context.Context, tenantID string) (models.SimpleTenant, error) {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	if user == nil {
		return models.SimpleTenant{}, ErrNotAuthenticated
	}
	idx := -1
	for i, t := range user.Tenants {
		if t.ID == tenantID {
			idx = i
		}
	}
	if idx < 0 {
		return models.SimpleTenant{}, ErrUnknownTenant
	}

	// sent from the current tenant; the target travels in the body
	if _, err := s.Client().SwitchTenant(ctx, tenantID); err != nil {
		return models.SimpleTenant{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.SimpleTenant{}, ErrNotAuthenticated
	}
	for i := range s.user.Tenants {
		s.user.Tenants[i].IsActive = i == idx
	}
	t := s.user.Tenants[idx]
	s.tenant = &t
	if err := s.bucket.SetJSON(ctx, repo.KeyUser, s.user); err != nil {
		return models.SimpleTenant{}, err
	}
	return t, s.persistTenant(ctx)
}

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := models.Session{Role: s.role}
	if s.user != nil {
		u := *s.user
		u.Tenants = append([]models.SimpleTenant(nil), s.user.Tenants...)
		out.User = &u
	}
	if s.tenant != nil {
		t := *s.tenant
		out.Tenant = &t
	}
	out.Permissions = append([]models.Permission{}, s.permissions...)
	return out
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Client returns a backend client scoped to this session's token and tenant.
func (s *Session) Client() *backend.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc := backend.Scope{Token: s.token}
	if s.tenant != nil {
		sc.TenantID = s.tenant.ID
	}
	return s.api.New(sc)
}

func (s *Session) establish(ctx context.Context, resp backend.AuthResponse) error {
	if resp.Token == "" {
		return errors.New("backend returned no token")
	}
	if err := resp.User.Validate(); err != nil {
		return fmt.Errorf("backend returned %w: %v", models.ErrInvalidUser, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(resp.Token, resp.User)
	if err := s.bucket.Set(ctx, repo.KeyAuthToken, resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.bucket.SetJSON(ctx, repo.KeyUser, s.user); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	slog.InfoContext(ctx, "session established", "user_id", s.user.ID, "role", string(s.role))
	return s.persistTenant(ctx)
}

// apply derives role, permissions and the active tenant. Callers hold mu.
func (s *Session) apply(token string, u models.User) {
	s.token = token
	s.role = models.ParseRole(u.Role)
	s.permissions = s.permissions[:0]
	for _, raw := range u.Permissions {
		if p, ok := models.ParsePermission(raw); ok {
			s.permissions = append(s.permissions, p)
		}
	}
	s.tenant = nil
	if idx := activeIndex(u.Tenants); idx >= 0 {
		for i := range u.Tenants {
			u.Tenants[i].IsActive = i == idx
		}
		t := u.Tenants[idx]
		s.tenant = &t
	}
	s.user = &u
}

func (s *Session) persistTenant(ctx context.Context) error {
	if s.tenant == nil {
		return s.bucket.Remove(ctx, repo.KeyTenantSubdomain)
	}
	if err := s.bucket.Set(ctx, repo.KeyTenantSubdomain, s.tenant.Subdomain); err != nil {
		return fmt.Errorf("store tenant subdomain: %w", err)
	}
	return nil
}

func (s *Session) reset(ctx context.Context, reason string) error {
	slog.WarnContext(ctx, "discarding stored session", "client_id", s.bucket.ClientID().String(), "reason", reason)
	s.mu.Lock()
	s.clear()
	s.mu.Unlock()
	return s.bucket.Remove(ctx, sessionKeys...)
}

func (s *Session) clear() {
	s.token = ""
	s.user = nil
	s.tenant = nil
	s.role = ""
	s.permissions = nil
}

// activeIndex picks the first tenant flagged active, else the first one.
func activeIndex(ts []models.SimpleTenant) int {
	for i, t := range ts {
		if t.IsActive {
			return i
		}
	}
	if len(ts) > 0 {
		return 0
	}
	return -1
}

func activeCount(ts []models.SimpleTenant) int {
	n := 0
	for _, t := range ts {
		if t.IsActive {
			n++
		}
	}
	return n
}

func validateRegister(r backend.RegisterRequest) error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidForm)
	case strings.TrimSpace(r.StoreName) == "":
		return fmt.Errorf("%w: store name is required", ErrInvalidForm)
	case len(r.Password) < 6:
		return fmt.Errorf("%w: password must have at least 6 characters", ErrInvalidForm)
	case !models.ValidSubdomain(r.Subdomain):
		return fmt.Errorf("%w: subdomain may only contain lowercase letters, digits and hyphens", ErrInvalidForm)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidForm)
	}
	return nil
}

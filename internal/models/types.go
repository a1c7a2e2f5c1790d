// internal/models/types.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	RoleCustom Role = "custom"
)

// ParseRole accepts the english role names and the spanish values the backend
// emits for older accounts. Anything else yields the empty role.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "vendor", "vendedor":
		return RoleVendor
	case "custom", "personalizado":
		return RoleCustom
	default:
		return ""
	}
}

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrInvalidUser    = errors.New("invalid user record")
)

type SimpleTenant struct {
	ID        string `json:"id"`
	Subdomain string `json:"subdomain"`
	StoreName string `json:"storeName"`
	IsActive  bool   `json:"isActive"`
}

// Tenant is the storefront metadata served by the backend for a subdomain.
type Tenant struct {
	ID           string          `json:"id"`
	Subdomain    string          `json:"subdomain"`
	StoreName    string          `json:"storeName"`
	IsActive     bool            `json:"isActive"`
	Logo         string          `json:"logo,omitempty"`
	Banner       string          `json:"banner,omitempty"`
	PrimaryColor string          `json:"primaryColor,omitempty"`
	Whatsapp     string          `json:"whatsapp,omitempty"`
	Settings     json.RawMessage `json:"settings,omitempty"`
}

type User struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        string         `json:"role"`
	Permissions []string       `json:"permissions"`
	Tenants     []SimpleTenant `json:"tenants"`
}

// Validate checks the parts of a persisted user the session relies on.
func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id is empty")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("user email is empty")
	}
	for i, t := range u.Tenants {
		if t.ID == "" || t.Subdomain == "" {
			return fmt.Errorf("tenant %d is missing id or subdomain", i)
		}
	}
	return nil
}

// Session is the snapshot exposed to handlers. Role and Permissions are derived
// from User at login/init time.
type Session struct {
	User        *User         `json:"user"`
	Tenant      *SimpleTenant `json:"tenant"`
	Permissions []Permission  `json:"permissions"`
	Role        Role          `json:"role"`
}

var subdomainRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidSubdomain reports whether s can be registered as a store subdomain.
func ValidSubdomain(s string) bool {
	if s == "www" || s == "api" {
		return false
	}
	return subdomainRe.MatchString(s)
}

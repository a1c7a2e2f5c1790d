package auth

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	CookieAuthToken = "auth_token"
	CookieAdminAuth = "admin-auth"
	CookieClientID  = "client_id"

	clientCookieMaxAge = 365 * 24 * time.Hour
)

// CookieOptions configures the cookies the gateway sets. Domain is the root
// domain so the cookies are shared by every store subdomain.
type CookieOptions struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// SetAuthCookies writes the bearer token and the admin-auth flag. They are a
// coarse client-side gate only; the backend verifies the token.
func SetAuthCookies(w http.ResponseWriter, token string, o CookieOptions) {
	http.SetCookie(w, o.cookie(CookieAuthToken, token, o.MaxAge))
	http.SetCookie(w, o.cookie(CookieAdminAuth, "true", o.MaxAge))
}

func ClearAuthCookies(w http.ResponseWriter, o CookieOptions) {
	http.SetCookie(w, o.cookie(CookieAuthToken, "", -1))
	http.SetCookie(w, o.cookie(CookieAdminAuth, "", -1))
}

func SetClientCookie(w http.ResponseWriter, id uuid.UUID, o CookieOptions) {
	http.SetCookie(w, o.cookie(CookieClientID, id.String(), clientCookieMaxAge))
}

// ReadClientID returns the client id cookie when present and well formed.
func ReadClientID(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(CookieClientID)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (o CookieOptions) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(maxAge / time.Second)
	}
	return c
}

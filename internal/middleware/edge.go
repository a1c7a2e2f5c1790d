// internal/middleware/edge.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/LuisHerrera98/tiendagenai/internal/tenant"
)

// HeaderSubdomain carries the resolved store subdomain to downstream handlers.
const HeaderSubdomain = "X-Tenant-Subdomain"

const (
	LandingPath = "/landing"
	StorePath   = "/store"
)

type Action int

const (
	Pass Action = iota
	Redirect
	Rewrite
)

func (a Action) String() string {
	switch a {
	case Redirect:
		return "redirect"
	case Rewrite:
		return "rewrite"
	}
	return "pass"
}

// Decision is what the edge does with one request.
type Decision struct {
	Action    Action
	Path      string // redirect location or rewritten path
	Subdomain string
}

// pathsWithoutStore are served on the bare domain.
var pathsWithoutStore = []string{"/admin", "/auth", "/api", LandingPath}

// Route decides how to handle host+path. It is pure and keeps no state
// between requests.
func Route(host, path, devOverride string) Decision {
	sub := tenant.ExtractSubdomain(host, devOverride)
	if sub == "" {
		if path != "/" && path != "" {
			for _, p := range pathsWithoutStore {
				if path == p || strings.HasPrefix(path, p+"/") {
					return Decision{Action: Pass}
				}
			}
		}
		return Decision{Action: Redirect, Path: LandingPath}
	}
	if path == "/" || path == "" {
		return Decision{Action: Rewrite, Path: StorePath, Subdomain: sub}
	}
	return Decision{Action: Pass, Subdomain: sub}
}

type ctxKeySubdomain struct{}

// SubdomainFromContext returns the subdomain the edge resolved, if any.
func SubdomainFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeySubdomain{}).(string)
	return s
}

// Edge applies Route to every request. devOverride, when set, supplies the
// store to use on loopback hosts.
func Edge(devOverride func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dev := ""
			if devOverride != nil {
				dev = devOverride(r)
			}
			// never trust a client supplied value
			r.Header.Del(HeaderSubdomain)

			d := Route(r.Host, r.URL.Path, dev)
			switch d.Action {
			case Redirect:
				http.Redirect(w, r, d.Path, http.StatusTemporaryRedirect)
				return
			case Rewrite:
				r2 := r.Clone(r.Context())
				r2.URL.Path = d.Path
				r2.URL.RawPath = ""
				r2.RequestURI = r2.URL.RequestURI()
				r = r2
			}
			if d.Subdomain != "" {
				r.Header.Set(HeaderSubdomain, d.Subdomain)
				r = r.WithContext(context.WithValue(r.Context(), ctxKeySubdomain{}, d.Subdomain))
			}
			next.ServeHTTP(w, r)
		})
	}
}

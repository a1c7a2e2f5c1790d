// internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LuisHerrera98/tiendagenai/internal/auth"
	"github.com/LuisHerrera98/tiendagenai/internal/backend"
	"github.com/LuisHerrera98/tiendagenai/internal/events"
	"github.com/LuisHerrera98/tiendagenai/internal/handlers/cart"
	"github.com/LuisHerrera98/tiendagenai/internal/handlers/orders"
	"github.com/LuisHerrera98/tiendagenai/internal/handlers/session"
	"github.com/LuisHerrera98/tiendagenai/internal/handlers/storefront"
	httpserver "github.com/LuisHerrera98/tiendagenai/internal/http"
	"github.com/LuisHerrera98/tiendagenai/internal/middleware"
	"github.com/LuisHerrera98/tiendagenai/internal/models"
	"github.com/LuisHerrera98/tiendagenai/internal/repo"
	"github.com/LuisHerrera98/tiendagenai/internal/tenant"
)

type Deps struct {
	Repo       repo.Repo
	API        *backend.Factory
	Resolver   *tenant.Resolver
	Events     events.Publisher
	Cookies    auth.CookieOptions
	RootDomain string
	DevEnabled bool
}

func RegisterRoutes(mux chi.Router, d Deps) {
	sf := storefront.New(d.RootDomain)
	ch := cart.New()
	oh := orders.New(d.API, d.Events)
	sh := session.New(d.Cookies, d.Resolver)

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpserver.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.Get(middleware.LandingPath, sf.Landing)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.ClientContext(d.Repo, d.API, d.Cookies))
		r.Use(middleware.TenantContext(d.Resolver))

		r.With(middleware.RequireTenant).Get(middleware.StorePath, sf.Store)

		r.Route("/api", func(api chi.Router) {
			api.Route("/cart", func(cr chi.Router) {
				cr.Get("/", ch.Get)
				cr.Delete("/", ch.Clear)
				cr.Post("/items", ch.AddItem)
				cr.Patch("/items/{productID}/{sizeID}", ch.UpdateQuantity)
				cr.Delete("/items/{productID}/{sizeID}", ch.RemoveItem)
			})

			api.Group(func(st chi.Router) {
				st.Use(middleware.RequireTenant)
				st.Get("/tenant", sf.Tenant)
				st.Post("/checkout", oh.Checkout)
				st.Get("/checkout/result", oh.PaymentResult)
				st.Get("/orders/last", oh.Last)
				st.Get("/orders/{orderID}", oh.Track)
			})

			api.Route("/auth", func(ar chi.Router) {
				ar.Post("/login", sh.Login)
				ar.Post("/register", sh.Register)
				ar.Post("/verify-email", sh.VerifyEmail)
				ar.Post("/forgot-password", sh.ForgotPassword)
				ar.Post("/reset-password", sh.ResetPassword)
				ar.Post("/logout", sh.Logout)
				ar.Get("/me", sh.Me)
				ar.Post("/permissions/check", sh.CheckPermissions)

				ar.Group(func(pr chi.Router) {
					pr.Use(middleware.RequireAuth)
					pr.Post("/tenant/switch", sh.SwitchTenant)
					pr.With(middleware.RequirePermission(models.PermSettingsEdit)).Patch("/tenant", sh.UpdateTenant)
				})
			})

			api.With(middleware.RequireAuth).Get("/admin/navigation", sh.Navigation)

			if d.DevEnabled {
				api.Put("/dev/subdomain", sf.SetDevSubdomain)
			}
		})
	})
}

// Package permission decides which actions the UI exposes for a session.
// The result is advisory: the backend re-checks every mutating call.
package permission

import "github.com/LuisHerrera98/tiendagenai/internal/models"

// Allowed reports whether role/granted satisfies any of requested.
// Admins pass every check, including an empty request.
func Allowed(role models.Role, granted []models.Permission, requested ...models.Permission) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, want := range requested {
		for _, have := range granted {
			if want == have {
				return true
			}
		}
	}
	return false
}

// NavEntry is an admin navigation item. An entry without permissions is
// always shown.
type NavEntry struct {
	Label       string              `json:"label"`
	Path        string              `json:"path"`
	Permissions []models.Permission `json:"-"`
}

// FilterNav keeps the entries the session may see, preserving order.
func FilterNav(entries []NavEntry, role models.Role, granted []models.Permission) []NavEntry {
	out := make([]NavEntry, 0, len(entries))
	for _, e := range entries {
		if len(e.Permissions) == 0 || Allowed(role, granted, e.Permissions...) {
			out = append(out, e)
		}
	}
	return out
}

// AdminNav is the admin dashboard menu.
var AdminNav = []NavEntry{
	{Label: "Dashboard", Path: "/admin/dashboard", Permissions: []models.Permission{models.PermDashboardView}},
	{Label: "Productos", Path: "/admin/products", Permissions: []models.Permission{models.PermProductsView}},
	{Label: "Categorías", Path: "/admin/categories", Permissions: []models.Permission{models.PermCategoriesView}},
	{Label: "Marcas", Path: "/admin/brands", Permissions: []models.Permission{models.PermBrandsView}},
	{Label: "Tipos", Path: "/admin/types", Permissions: []models.Permission{models.PermTypesView}},
	{Label: "Géneros", Path: "/admin/genders", Permissions: []models.Permission{models.PermGendersView}},
	{Label: "Colores", Path: "/admin/colors", Permissions: []models.Permission{models.PermColorsView}},
	{Label: "Talles", Path: "/admin/sizes", Permissions: []models.Permission{models.PermSizesView}},
	{Label: "Pedidos", Path: "/admin/orders", Permissions: []models.Permission{models.PermOrdersView}},
	{Label: "Ventas", Path: "/admin/sales", Permissions: []models.Permission{models.PermSalesView, models.PermSalesCreate}},
	{Label: "Usuarios", Path: "/admin/users", Permissions: []models.Permission{models.PermUsersView}},
	{Label: "Configuración", Path: "/admin/settings", Permissions: []models.Permission{models.PermSettingsView}},
	{Label: "Ayuda", Path: "/admin/help"},
}

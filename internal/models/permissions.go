package models

import "sort"

// Permission is a capability tag of the form "<area>.<action>".
type Permission string

const (
	PermDashboardView Permission = "dashboard.view"

	PermProductsView   Permission = "products.view"
	PermProductsCreate Permission = "products.create"
	PermProductsEdit   Permission = "products.edit"
	PermProductsDelete Permission = "products.delete"

	PermCategoriesView   Permission = "categories.view"
	PermCategoriesCreate Permission = "categories.create"
	PermCategoriesEdit   Permission = "categories.edit"
	PermCategoriesDelete Permission = "categories.delete"

	PermBrandsView   Permission = "brands.view"
	PermBrandsCreate Permission = "brands.create"
	PermBrandsEdit   Permission = "brands.edit"
	PermBrandsDelete Permission = "brands.delete"

	PermTypesView   Permission = "types.view"
	PermTypesCreate Permission = "types.create"
	PermTypesEdit   Permission = "types.edit"
	PermTypesDelete Permission = "types.delete"

	PermGendersView   Permission = "genders.view"
	PermGendersCreate Permission = "genders.create"
	PermGendersEdit   Permission = "genders.edit"
	PermGendersDelete Permission = "genders.delete"

	PermColorsView   Permission = "colors.view"
	PermColorsCreate Permission = "colors.create"
	PermColorsEdit   Permission = "colors.edit"
	PermColorsDelete Permission = "colors.delete"

	PermSizesView   Permission = "sizes.view"
	PermSizesCreate Permission = "sizes.create"
	PermSizesEdit   Permission = "sizes.edit"
	PermSizesDelete Permission = "sizes.delete"

	PermOrdersView   Permission = "orders.view"
	PermOrdersCreate Permission = "orders.create"
	PermOrdersEdit   Permission = "orders.edit"
	PermOrdersDelete Permission = "orders.delete"

	PermSalesView   Permission = "sales.view"
	PermSalesCreate Permission = "sales.create"
	PermSalesEdit   Permission = "sales.edit"
	PermSalesDelete Permission = "sales.delete"

	PermUsersView   Permission = "users.view"
	PermUsersCreate Permission = "users.create"
	PermUsersEdit   Permission = "users.edit"
	PermUsersDelete Permission = "users.delete"

	PermSettingsView Permission = "settings.view"
	PermSettingsEdit Permission = "settings.edit"
)

var knownPermissions = map[Permission]struct{}{}

func init() {
	for _, p := range []Permission{
		PermDashboardView,
		PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsDelete,
		PermCategoriesView, PermCategoriesCreate, PermCategoriesEdit, PermCategoriesDelete,
		PermBrandsView, PermBrandsCreate, PermBrandsEdit, PermBrandsDelete,
		PermTypesView, PermTypesCreate, PermTypesEdit, PermTypesDelete,
		PermGendersView, PermGendersCreate, PermGendersEdit, PermGendersDelete,
		PermColorsView, PermColorsCreate, PermColorsEdit, PermColorsDelete,
		PermSizesView, PermSizesCreate, PermSizesEdit, PermSizesDelete,
		PermOrdersView, PermOrdersCreate, PermOrdersEdit, PermOrdersDelete,
		PermSalesView, PermSalesCreate, PermSalesEdit, PermSalesDelete,
		PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
		PermSettingsView, PermSettingsEdit,
	} {
		knownPermissions[p] = struct{}{}
	}
}

// ParsePermission returns the permission for s when it belongs to the known set.
func ParsePermission(s string) (Permission, bool) {
	p := Permission(s)
	_, ok := knownPermissions[p]
	return p, ok
}

// Permissions returns every known permission in stable order.
func Permissions() []Permission {
	all := make([]Permission, 0, len(knownPermissions))
	for p := range knownPermissions {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

func (p Permission) String() string { return string(p) }

package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/logistics-console/internal/domain"
	apperrors "github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

// Permission names one gated console operation.
type Permission string

const (
	PermShipmentsListAll      Permission = "shipments:list_all"
	PermShipmentsListOwn      Permission = "shipments:list_own"
	PermShipmentsListAssigned Permission = "shipments:list_assigned"
	PermShipmentsCreate       Permission = "shipments:create"
	PermShipmentsView         Permission = "shipments:view"
	PermShipmentsUpdateStatus Permission = "shipments:update_status"
	PermShipmentsAssign       Permission = "shipments:assign"
	PermShipmentsStatistics   Permission = "shipments:statistics"
	PermHistoryView           Permission = "history:view"
	PermDriversList           Permission = "drivers:list"
	PermDriversCreate         Permission = "drivers:create"
)

// Permissions is the role to operation table.
var Permissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermShipmentsListAll,
		PermShipmentsView,
		PermShipmentsUpdateStatus,
		PermShipmentsAssign,
		PermShipmentsStatistics,
		PermHistoryView,
		PermDriversList,
		PermDriversCreate,
	},
	domain.RoleDriver: {
		PermShipmentsListAssigned,
		PermShipmentsView,
		PermShipmentsUpdateStatus,
		PermHistoryView,
	},
	domain.RoleUser: {
		PermShipmentsListOwn,
		PermShipmentsCreate,
		PermShipmentsView,
		PermHistoryView,
	},
}

// Allowed reports whether role may perform perm.
func Allowed(role domain.Role, perm Permission) bool {
	for _, p := range Permissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// MenuItem is one dashboard navigation entry.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var menus = map[domain.Role][]MenuItem{
	domain.RoleAdmin: {
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "View All Orders", Path: "/dashboard/admin/orders"},
		{Label: "Manage Users", Path: "/dashboard/users"},
	},
	domain.RoleDriver: {
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "My Orders", Path: "/dashboard/my-orders"},
	},
	domain.RoleUser: {
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "My Orders", Path: "/dashboard/my-orders"},
		{Label: "Create Order", Path: "/dashboard/create-order"},
	},
}

var panelTitles = map[domain.Role]string{
	domain.RoleAdmin:  "Administration Panel",
	domain.RoleDriver: "Driver Panel",
	domain.RoleUser:   "User Panel",
}

// Menu returns the navigation entries for role. Unknown roles get none.
func Menu(role domain.Role) []MenuItem {
	items := menus[role]
	out := make([]MenuItem, len(items))
	copy(out, items)
	return out
}

// PanelTitle returns the dashboard heading for role.
func PanelTitle(role domain.Role) string {
	return panelTitles[role]
}

// RequirePermission rejects callers whose role lacks perm.
func RequirePermission(perm Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Allowed(session.Role, perm) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

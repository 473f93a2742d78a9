package navigation

import (
	"strings"

	"github.com/quipuerp/quipu/internal/permission"
)

// Route is a UI destination gated by a module key.
type Route struct {
	Path   string
	Module string
}

// Entry pairs a route with the module that must resolve true for it.
type Entry struct {
	Route          Route
	RequiredModule string
}

// Well-known destinations. Order in routeTable is the scan priority.
var (
	RouteInventory     = Route{Path: "/inventario", Module: permission.ModuleInventory}
	RouteProduction    = Route{Path: "/produccion", Module: permission.ModuleProduction}
	RouteQuotes        = Route{Path: "/cotizaciones", Module: permission.ModuleQuotes}
	RouteOrders        = Route{Path: "/pedidos", Module: permission.ModuleOrders}
	RouteCustomers     = Route{Path: "/clientes", Module: permission.ModuleCustomers}
	RouteNotifications = Route{Path: "/notificaciones", Module: permission.ModuleNotifications}
	RouteReports       = Route{Path: "/reportes", Module: permission.ModuleReports}
	RouteSettings      = Route{Path: "/configuracion", Module: permission.ModuleSettings}
)

// routeTable is the general fixed-priority scan order: the first entry whose
// module resolves true wins.
var routeTable = []Entry{
	{Route: RouteQuotes, RequiredModule: permission.ModuleQuotes},
	{Route: RouteOrders, RequiredModule: permission.ModuleOrders},
	{Route: RouteInventory, RequiredModule: permission.ModuleInventory},
	{Route: RouteProduction, RequiredModule: permission.ModuleProduction},
	{Route: RouteCustomers, RequiredModule: permission.ModuleCustomers},
	{Route: RouteReports, RequiredModule: permission.ModuleReports},
	{Route: RouteSettings, RequiredModule: permission.ModuleSettings},
	{Route: RouteNotifications, RequiredModule: permission.ModuleNotifications},
}

// rolePriority routes specific roles to their home screen before the
// general table is consulted. The route still has to be permitted.
var rolePriority = map[string]Route{
	permission.RoleWarehouse: RouteInventory,
	permission.RoleFinance:   RouteReports,
}

// Table returns the scan-ordered route entries, for menu rendering.
func Table() []Entry {
	out := make([]Entry, len(routeTable))
	copy(out, routeTable)
	return out
}

// FirstAvailableRoute returns the first destination reachable by the role
// under the resolver. ok=false means no module is accessible at all — a
// terminal state the caller must surface, not a redirect to "/".
func FirstAvailableRoute(role string, resolver permission.Resolver) (Route, bool) {
	role = strings.ToLower(strings.TrimSpace(role))

	if preferred, found := rolePriority[role]; found {
		if resolver.HasAccess(preferred.Module) {
			return preferred, true
		}
	}

	for _, entry := range routeTable {
		if resolver.HasAccess(entry.RequiredModule) {
			return entry.Route, true
		}
	}
	return Route{}, false
}

// AccessibleRoutes filters the table down to what the resolver permits,
// preserving priority order. Used to build the navigation tree.
func AccessibleRoutes(resolver permission.Resolver) []Route {
	var out []Route
	for _, entry := range routeTable {
		if resolver.HasAccess(entry.RequiredModule) {
			out = append(out, entry.Route)
		}
	}
	return out
}

package navigation

import (
	"testing"

	"github.com/quipuerp/quipu/internal/permission"
)

func TestFirstAvailableRouteScansInOrder(t *testing.T) {
	resolver := permission.NewResolver(map[string]bool{
		permission.ModuleOrders:  true,
		permission.ModuleReports: true,
	})

	route, ok := FirstAvailableRoute("seller", resolver)
	if !ok {
		t.Fatal("expected a route")
	}
	if route != RouteOrders {
		t.Fatalf("expected orders (first in table priority), got %s", route.Path)
	}
}

func TestFirstAvailableRouteRolePriority(t *testing.T) {
	resolver := permission.NewResolver(map[string]bool{
		permission.ModuleOrders:  true,
		permission.ModuleReports: true,
	})

	route, ok := FirstAvailableRoute("finance", resolver)
	if !ok {
		t.Fatal("expected a route")
	}
	if route != RouteReports {
		t.Fatalf("finance priority rule must win over table order, got %s", route.Path)
	}
}

func TestRolePriorityStillRequiresPermission(t *testing.T) {
	resolver := permission.NewResolver(map[string]bool{
		permission.ModuleOrders: true,
	})

	route, ok := FirstAvailableRoute("warehouse", resolver)
	if !ok {
		t.Fatal("expected a route")
	}
	if route != RouteOrders {
		t.Fatalf("warehouse without inventory access must fall through to the table, got %s", route.Path)
	}
}

func TestFirstAvailableRouteNone(t *testing.T) {
	if _, ok := FirstAvailableRoute("seller", permission.Resolver{}); ok {
		t.Fatal("no accessible module must yield ok=false, not a default route")
	}
}

func TestAccessibleRoutesPreservesOrder(t *testing.T) {
	resolver := permission.NewResolver(map[string]bool{
		permission.ModuleReports:   true,
		permission.ModuleQuotes:    true,
		permission.ModuleInventory: true,
	})

	routes := AccessibleRoutes(resolver)
	if len(routes) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(routes))
	}
	if routes[0] != RouteQuotes || routes[1] != RouteInventory || routes[2] != RouteReports {
		t.Fatalf("unexpected order: %v", routes)
	}
}

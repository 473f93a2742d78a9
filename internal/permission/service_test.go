package permission

import (
	"context"
	"testing"

	"github.com/quipuerp/quipu/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	enforcer, err := NewEnforcer(dbConn)
	if err != nil {
		t.Fatalf("failed to build enforcer: %v", err)
	}
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestZeroResolverDeniesAll(t *testing.T) {
	var r Resolver
	for _, moduleKey := range Modules() {
		if r.HasAccess(moduleKey) {
			t.Fatalf("unloaded resolver granted %s", moduleKey)
		}
	}
	if r.HasAnyAccess(Modules()...) {
		t.Fatal("unloaded resolver granted some module")
	}
}

func TestResolveRoleSeller(t *testing.T) {
	svc := newTestService(t)

	r, err := svc.ResolveRole(context.Background(), "seller")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.HasAccess(ModuleQuotes) {
		t.Fatal("seller must reach quotes")
	}
	if r.HasAccess(ModuleSettings) {
		t.Fatal("seller must not reach settings")
	}
	if !r.HasAnyAccess(ModuleSettings, ModuleOrders) {
		t.Fatal("seller reaches orders, any-access must be true")
	}
}

func TestResolveRoleIsIdempotent(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.ResolveRole(context.Background(), "finance")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := svc.ResolveRole(context.Background(), "finance")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, moduleKey := range Modules() {
		if first.HasAccess(moduleKey) != second.HasAccess(moduleKey) {
			t.Fatalf("resolution for %s not stable", moduleKey)
		}
	}
}

func TestResolveUnknownRoleFailsClosed(t *testing.T) {
	svc := newTestService(t)

	r, err := svc.ResolveRole(context.Background(), "intern")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, moduleKey := range Modules() {
		if r.HasAccess(moduleKey) {
			t.Fatalf("unknown role granted %s", moduleKey)
		}
	}
}

func TestResolverSnapshotIsDetached(t *testing.T) {
	source := map[string]bool{ModuleQuotes: true}
	r := NewResolver(source)
	source[ModuleQuotes] = false

	if !r.HasAccess(ModuleQuotes) {
		t.Fatal("resolver must copy the mapping, not alias it")
	}
}

package permission

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

var Module = fx.Module("permission",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)

// Application modules. Each key gates one feature area; routes and UI
// actions resolve against these.
const (
	ModuleInventory     = "inventory"
	ModuleProduction    = "production"
	ModuleQuotes        = "quotes"
	ModuleOrders        = "orders"
	ModuleCustomers     = "customers"
	ModuleNotifications = "notifications"
	ModuleReports       = "reports"
	ModuleSettings      = "settings"
)

// Roles are a closed enumeration. Permissions come from the explicit
// role → module policy, never from matching on role-name substrings.
const (
	RoleAdmin     = "admin"
	RoleSeller    = "seller"
	RoleWarehouse = "warehouse"
	RoleFinance   = "finance"
)

const actionAccess = "access"

var allModules = []string{
	ModuleInventory,
	ModuleProduction,
	ModuleQuotes,
	ModuleOrders,
	ModuleCustomers,
	ModuleNotifications,
	ModuleReports,
	ModuleSettings,
}

var allRoles = []string{RoleAdmin, RoleSeller, RoleWarehouse, RoleFinance}

var ErrUnknownRole = errors.New("unknown_role")

// Modules returns the full list of gateable module keys.
func Modules() []string {
	out := make([]string, len(allModules))
	copy(out, allModules)
	return out
}

// KnownRole reports whether the role belongs to the closed enumeration.
func KnownRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, known := range allRoles {
		if role == known {
			return true
		}
	}
	return false
}

type Service interface {
	// ResolveRole builds the full permission snapshot for a role. Unknown
	// roles resolve to a deny-all snapshot, not an error response — the
	// resolver fails closed.
	ResolveRole(ctx context.Context, role string) (Resolver, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("permission.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) ResolveRole(ctx context.Context, role string) (Resolver, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !KnownRole(role) {
		s.log.Warn("permission lookup for unknown role", zap.String("role", role))
		return Resolver{}, nil
	}

	subject := fmt.Sprintf("role:%s", role)
	grants := make(map[string]bool, len(allModules))
	for _, moduleKey := range allModules {
		allowed, err := s.enforcer.Enforce(subject, moduleKey, actionAccess)
		if err != nil {
			return Resolver{}, err
		}
		grants[moduleKey] = allowed
	}
	return NewResolver(grants), nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Admin reaches everything.
		{"role:admin", ModuleInventory, actionAccess},
		{"role:admin", ModuleProduction, actionAccess},
		{"role:admin", ModuleQuotes, actionAccess},
		{"role:admin", ModuleOrders, actionAccess},
		{"role:admin", ModuleCustomers, actionAccess},
		{"role:admin", ModuleNotifications, actionAccess},
		{"role:admin", ModuleReports, actionAccess},
		{"role:admin", ModuleSettings, actionAccess},

		// Sellers work quotes, orders and customers.
		{"role:seller", ModuleQuotes, actionAccess},
		{"role:seller", ModuleOrders, actionAccess},
		{"role:seller", ModuleCustomers, actionAccess},
		{"role:seller", ModuleNotifications, actionAccess},

		// Warehouse handles stock and production.
		{"role:warehouse", ModuleInventory, actionAccess},
		{"role:warehouse", ModuleProduction, actionAccess},
		{"role:warehouse", ModuleNotifications, actionAccess},

		// Finance reviews orders and reports.
		{"role:finance", ModuleOrders, actionAccess},
		{"role:finance", ModuleReports, actionAccess},
		{"role:finance", ModuleCustomers, actionAccess},
		{"role:finance", ModuleNotifications, actionAccess},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}

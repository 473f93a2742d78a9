package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quipuerp/quipu/internal/credit"
	customerdomain "github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/internal/permission"
	productdomain "github.com/quipuerp/quipu/internal/product/domain"
	quotedomain "github.com/quipuerp/quipu/internal/quote/domain"
	"github.com/quipuerp/quipu/pkg/sessionctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPermissions struct {
	grants map[string]bool
}

func (s stubPermissions) ResolveRole(_ context.Context, _ string) (permission.Resolver, error) {
	return permission.NewResolver(s.grants), nil
}

func newTestServer(grants map[string]bool) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:        engine,
		log:           zap.NewNop(),
		permissionSvc: stubPermissions{grants: grants},
	}
	return srv, engine
}

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{name: "unauthorized", err: ErrUnauthorized, status: http.StatusUnauthorized, typ: "unauthorized"},
		{name: "forbidden", err: ErrForbidden, status: http.StatusForbidden, typ: "forbidden"},
		{name: "customer not found", err: customerdomain.ErrNotFound, status: http.StatusNotFound, typ: "not_found"},
		{name: "document not found", err: quotedomain.ErrNotFound, status: http.StatusNotFound, typ: "not_found"},
		{name: "duplicate tax id", err: customerdomain.ErrDuplicateTaxID, status: http.StatusConflict, typ: "conflict"},
		{name: "quote converted", err: quotedomain.ErrQuoteConverted, status: http.StatusConflict, typ: "conflict"},
		{name: "insufficient stock", err: productdomain.ErrInsufficient, status: http.StatusConflict, typ: "conflict"},
		{name: "invalid tax id", err: customerdomain.ErrInvalidTaxID, status: http.StatusBadRequest, typ: "validation_error"},
		{name: "empty document", err: quotedomain.ErrEmptyDocument, status: http.StatusBadRequest, typ: "validation_error"},
		{name: "credit sentinel", err: credit.ErrExceeded, status: http.StatusUnprocessableEntity, typ: "credit_exceeded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestMapErrorCreditExceededCarriesAmounts(t *testing.T) {
	err := &quotedomain.CreditExceededError{
		Available: decimal.NewFromInt(500),
		Requested: decimal.NewFromInt(750),
	}

	status, payload := mapError(err)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "credit_exceeded", payload.Type)
	require.Equal(t, "500.00", payload.Available)
	require.Equal(t, "750.00", payload.Requested)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(customerdomain.ErrInvalidTaxID)
	require.Equal(t, "validation_error", typ)
	require.Equal(t, "invalid_tax_id", code)

	typ, code = classifyErrorForLog(quotedomain.ErrNotFound)
	require.Equal(t, "not_found", typ)
	require.Equal(t, "not_found", code)
}

func TestSessionFromHeaders(t *testing.T) {
	srv, engine := newTestServer(nil)

	var captured sessionctx.Session
	var present bool
	engine.GET("/echo", srv.SessionFromHeaders(), func(c *gin.Context) {
		captured, present = sessionctx.FromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("X-User-Id", "1234567890123456789")
	req.Header.Set("X-User-Role", "Seller")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.True(t, present)
	require.Equal(t, "seller", captured.Role)
	require.Equal(t, "1234567890123456789", captured.UserID.String())
}

func TestSessionRequiredRejectsAnonymous(t *testing.T) {
	srv, engine := newTestServer(nil)
	engine.GET("/gated", srv.SessionFromHeaders(), srv.SessionRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gated", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireModule(t *testing.T) {
	srv, engine := newTestServer(map[string]bool{
		permission.ModuleQuotes: true,
	})
	engine.GET("/quotes", srv.SessionFromHeaders(), srv.RequireModule(permission.ModuleQuotes), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	engine.GET("/settings", srv.SessionFromHeaders(), srv.RequireModule(permission.ModuleSettings), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	allowed := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	allowed.Header.Set("X-User-Id", "42")
	allowed.Header.Set("X-User-Role", "seller")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, allowed)
	require.Equal(t, http.StatusNoContent, rec.Code)

	denied := httptest.NewRequest(http.MethodGet, "/settings", nil)
	denied.Header.Set("X-User-Id", "42")
	denied.Header.Set("X-User-Role", "seller")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, denied)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResolveNavigation(t *testing.T) {
	srv, engine := newTestServer(map[string]bool{
		permission.ModuleInventory:  true,
		permission.ModuleProduction: true,
	})
	engine.GET("/navigation", srv.SessionFromHeaders(), srv.ResolveNavigation)

	req := httptest.NewRequest(http.MethodGet, "/navigation", nil)
	req.Header.Set("X-User-Id", "42")
	req.Header.Set("X-User-Role", "warehouse")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"/inventario"`)
	require.Contains(t, rec.Body.String(), `"home_route":"/inventario"`)
}

func TestResolveNavigationNoAccess(t *testing.T) {
	srv, engine := newTestServer(nil)
	engine.GET("/navigation", srv.SessionFromHeaders(), srv.ResolveNavigation)

	req := httptest.NewRequest(http.MethodGet, "/navigation", nil)
	req.Header.Set("X-User-Id", "42")
	req.Header.Set("X-User-Role", "intern")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"home_route":null`)
}

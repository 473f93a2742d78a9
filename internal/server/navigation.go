package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quipuerp/quipu/internal/navigation"
	"github.com/quipuerp/quipu/pkg/sessionctx"
)

type navigationRoute struct {
	Path   string `json:"path"`
	Module string `json:"module"`
}

type navigationResponse struct {
	Role      string            `json:"role"`
	Modules   map[string]bool   `json:"modules"`
	Routes    []navigationRoute `json:"routes"`
	HomeRoute *string           `json:"home_route"`
}

// ResolveNavigation answers the full gate state for the session role: the
// module grants, the reachable routes in priority order and the landing
// route. A null home_route means no module is accessible at all; the client
// must show the no-access screen rather than redirect.
func (s *Server) ResolveNavigation(c *gin.Context) {
	role, ok := sessionctx.RoleFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	resolver, err := s.permissionSvc.ResolveRole(c.Request.Context(), role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	accessible := navigation.AccessibleRoutes(resolver)
	routes := make([]navigationRoute, 0, len(accessible))
	for _, route := range accessible {
		routes = append(routes, navigationRoute{Path: route.Path, Module: route.Module})
	}

	resp := navigationResponse{
		Role:    role,
		Modules: resolver.Grants(),
		Routes:  routes,
	}
	if home, found := navigation.FirstAvailableRoute(role, resolver); found {
		resp.HomeRoute = &home.Path
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

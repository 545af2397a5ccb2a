package handlers

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"feedbackboard/internal/observability"
	"feedbackboard/internal/version"

	"github.com/gin-gonic/gin"
)

// Route surfaces reported by GET /v1/routes
const (
	SurfacePage   = "page"
	SurfaceAPI    = "api"
	SurfaceSystem = "system"
)

// RouteInfo describes one registered route
type RouteInfo struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Surface string `json:"surface"`
	// Destructive routes remove feedback and need an explicit confirmation
	Destructive bool   `json:"destructive"`
	HandlerName string `json:"handler_name"`
}

// RouteListingHandler lists the routes registered on an engine
type RouteListingHandler struct {
	serviceName string
	routes      []RouteInfo
}

// NewRouteListingHandler creates a new route listing handler
func NewRouteListingHandler(serviceName string) *RouteListingHandler {
	return &RouteListingHandler{
		serviceName: serviceName,
		routes:      []RouteInfo{},
	}
}

func routeSurface(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/"):
		return SurfaceAPI
	case path == "/health":
		return SurfaceSystem
	default:
		return SurfacePage
	}
}

func isDestructive(method, path string) bool {
	if method == http.MethodDelete {
		return true
	}
	return method == http.MethodPost && (strings.HasSuffix(path, "/delete") || strings.HasSuffix(path, "/clear"))
}

// CollectRoutes snapshots the engine's routes, sorted by path then method. /debug/ routes are skipped.
func (h *RouteListingHandler) CollectRoutes(engine *gin.Engine) {
	routes := make([]RouteInfo, 0, len(engine.Routes()))
	for _, route := range engine.Routes() {
		if strings.HasPrefix(route.Path, "/debug/") {
			continue
		}
		routes = append(routes, RouteInfo{
			Method:      route.Method,
			Path:        route.Path,
			Surface:     routeSurface(route.Path),
			Destructive: isDestructive(route.Method, route.Path),
			HandlerName: route.Handler,
		})
	}

	slices.SortFunc(routes, func(a, b RouteInfo) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
	})
	h.routes = routes
}

// GetRouteListingJSON handles GET /v1/routes. ?surface=page|api|system narrows the list.
func (h *RouteListingHandler) GetRouteListingJSON(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_route_listing_json")
	defer observability.FinishSpan(span, nil)

	routes := h.routes
	if surface := c.Query("surface"); surface != "" {
		routes = slices.DeleteFunc(slices.Clone(h.routes), func(r RouteInfo) bool { return r.Surface != surface })
	}

	c.JSON(http.StatusOK, gin.H{
		"service": h.serviceName,
		"version": version.Version,
		"routes":  routes,
	})
}

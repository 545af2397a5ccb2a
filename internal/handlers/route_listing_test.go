package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouteListingHandler(t *testing.T) {
	handler := NewRouteListingHandler("Test Service")
	assert.NotNil(t, handler)
	assert.Equal(t, "Test Service", handler.serviceName)
	assert.NotNil(t, handler.routes)
}

func TestRouteListingHandler_CollectRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/", func(_ *gin.Context) {})
	router.POST("/feedback", func(_ *gin.Context) {})
	router.GET("/debug/pprof", func(_ *gin.Context) {})
	v1 := router.Group("/v1")
	{
		v1.GET("/feedback", func(_ *gin.Context) {})
		v1.DELETE("/feedback", func(_ *gin.Context) {})
	}

	handler := NewRouteListingHandler("Test Service")
	handler.CollectRoutes(router)

	require.Len(t, handler.routes, 4, "debug routes are skipped")
	assert.Equal(t, "/", handler.routes[0].Path)
	assert.Equal(t, "/feedback", handler.routes[1].Path)
	assert.Equal(t, RouteInfo{
		Method:      "DELETE",
		Path:        "/v1/feedback",
		Surface:     SurfaceAPI,
		Destructive: true,
		HandlerName: handler.routes[2].HandlerName,
	}, handler.routes[2])
	assert.Equal(t, "GET", handler.routes[3].Method)
	assert.False(t, handler.routes[3].Destructive)
	assert.Equal(t, SurfacePage, handler.routes[0].Surface)
}

func TestRouteListingHandler_ResponseFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/test", func(_ *gin.Context) {})

	handler := NewRouteListingHandler("Format Test Service")
	handler.CollectRoutes(router)
	router.GET("/routes", handler.GetRouteListingJSON)

	req, _ := http.NewRequest("GET", "/routes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body struct {
		Service string      `json:"service"`
		Routes  []RouteInfo `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Format Test Service", body.Service)
	require.Len(t, body.Routes, 1)
	assert.Equal(t, "GET", body.Routes[0].Method)
	assert.Equal(t, "/test", body.Routes[0].Path)
}

func TestRouteListingHandler_SurfaceFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", func(_ *gin.Context) {})
	router.POST("/feedback/clear", func(_ *gin.Context) {})
	router.GET("/health", func(_ *gin.Context) {})
	router.GET("/v1/feedback", func(_ *gin.Context) {})

	handler := NewRouteListingHandler("svc")
	handler.CollectRoutes(router)
	router.GET("/v1/routes", handler.GetRouteListingJSON)

	req, _ := http.NewRequest("GET", "/v1/routes?surface=page", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Routes []RouteInfo `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Routes, 2)
	assert.Equal(t, "/", body.Routes[0].Path)
	assert.Equal(t, "/feedback/clear", body.Routes[1].Path)
	assert.True(t, body.Routes[1].Destructive)

	require.Len(t, handler.routes, 4, "filtering must not modify the collected routes")
}

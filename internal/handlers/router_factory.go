package handlers

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"feedbackboard/internal/config"
	"feedbackboard/internal/middleware"
	"feedbackboard/internal/observability"
	"feedbackboard/internal/serviceinterfaces"
	"feedbackboard/internal/version"
)

// ServiceName identifies the server in traces, logs and /v1/version
const ServiceName = "feedback-board"

// NewRouter creates the gin engine with all middleware and routes. notifier may be nil.
func NewRouter(
	cfg *config.Config,
	registry serviceinterfaces.BoardRegistryInterface,
	notifier serviceinterfaces.NotifierInterface,
	logger *observability.Logger,
) *gin.Engine {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.ErrorRecoveryMiddleware(logger, middleware.DefaultErrorRecoveryConfig()))

	// HTTP request logging through the observability logger
	router.Use(func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  latency.Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		if statusCode >= 500 {
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		} else if statusCode >= 400 {
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		} else {
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Health check endpoint (defined before tracing and sessions)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
	})

	router.Use(observability.GinMiddlewareWithErrorHandling(ServiceName)...)

	router.RedirectTrailingSlash = false

	// cors.New rejects an empty origin list, so same-origin deployments skip it
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Requested-With"}
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.ExposeHeaders = []string{"Content-Disposition"}
		router.Use(cors.New(corsConfig))
	}

	// The session cookie carries the board id and flash notifications
	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		// Browsers drop Secure cookies sent over plain HTTP; enable only behind TLS
		Secure:   cfg.Server.SecureCookies,
	}
	if cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	// Security middleware
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.IsDevelopment = cfg.Server.Debug
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	router.SetHTMLTemplate(template.Must(LoadTemplates()))

	pageHandler := NewPageHandler(registry, notifier, cfg, logger)
	feedbackHandler := NewFeedbackHandler(registry, notifier, cfg, logger)
	routeListing := NewRouteListingHandler(ServiceName)

	// Server-rendered board
	router.GET("/", pageHandler.Index)
	router.POST("/feedback", pageHandler.Submit)
	router.POST("/feedback/clear", pageHandler.ClearAll)
	router.POST("/feedback/:id/delete", pageHandler.Delete)
	router.GET("/export", pageHandler.Export)
	router.POST("/dark-mode", pageHandler.ToggleDarkMode)

	v1 := router.Group("/v1")
	{
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, version.Get(ServiceName))
		})
		v1.GET("/routes", routeListing.GetRouteListingJSON)

		feedback := v1.Group("/feedback")
		{
			feedback.GET("", feedbackHandler.ListFeedback)
			feedback.POST("", feedbackHandler.SubmitFeedback)
			feedback.DELETE("", feedbackHandler.ClearFeedback)
			feedback.DELETE("/:id", feedbackHandler.DeleteFeedback)
			feedback.PUT("/filter", feedbackHandler.SetFilter)
			feedback.GET("/stats", feedbackHandler.GetStats)
			feedback.GET("/export", feedbackHandler.ExportFeedback)
		}

		preferences := v1.Group("/preferences")
		{
			preferences.GET("/dark-mode", feedbackHandler.GetDarkMode)
			preferences.POST("/dark-mode/toggle", feedbackHandler.ToggleDarkMode)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/v1/") {
			StandardizeHTTPError(c, http.StatusNotFound, "Not found", c.Request.URL.Path)
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	})

	routeListing.CollectRoutes(router)

	return router
}

// Package web is the server-rendered portal: gin routes, handlers and the embedded
// page templates.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobboard-portal/internal/auth"
	perrors "jobboard-portal/internal/common/errors"
	"jobboard-portal/internal/common/logger"
	"jobboard-portal/internal/session"
	"jobboard-portal/pkg/registry"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the collaborators the router is built from.
type Deps struct {
	Stores  *session.Registry
	Tokens  *auth.TokenStore
	Auth    *auth.Service
	Guard   *auth.Guard
	Views   *registry.ViewRegistry
	Cookie  auth.CookieConfig
	Service string
	// Ready reports whether the portal's dependencies are reachable.
	Ready  func(ctx context.Context) error
	Logger logger.Logger
}

// Handler serves every portal page.
type Handler struct {
	stores  *session.Registry
	tokens  *auth.TokenStore
	auth    *auth.Service
	views   *registry.ViewRegistry
	service string
	ready   func(ctx context.Context) error
	errs    *perrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "web"})
	return &Handler{
		stores:  deps.Stores,
		tokens:  deps.Tokens,
		auth:    deps.Auth,
		views:   deps.Views,
		service: deps.Service,
		ready:   deps.Ready,
		errs:    perrors.NewErrorHandler(log),
		logger:  log,
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// NewRouter wires the probes outside the session guard and every page behind it.
func NewRouter(deps Deps) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}
	h := NewHandler(deps)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(h.logger))
	router.SetHTMLTemplate(tmpl)

	router.GET("/health", h.health)
	router.GET("/ready", h.readiness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := router.Group("/")
	pages.Use(auth.Middleware(deps.Guard, deps.Tokens, deps.Cookie, h.logger))
	{
		pages.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, h.views.DefaultAuthenticated) })
		pages.GET("/login", h.loginPage)
		pages.POST("/login", h.login)
		pages.POST("/logout", h.logout)

		pages.GET("/jobs", h.listJobs)
		pages.GET("/jobs/:id", h.showJob)
		pages.POST("/jobs/:id/apply", h.apply)
		pages.POST("/jobs/:id/cancel", h.cancel)
		pages.POST("/jobs/:id/comments", h.createComment)
		pages.POST("/jobs/:id/comments/:commentID/delete", h.deleteComment)

		pages.GET("/applications", h.listApplications)
		pages.POST("/applications/:id/status", h.updateStatus)
		pages.POST("/applications/:id/rate", h.rate)

		pages.GET("/subscription", h.showSubscription)
		pages.POST("/subscription/:id/apply", h.subscribe)
	}
	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "page not found")
	})
	return router, nil
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("requestId", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"requestId":  c.GetString("requestId"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"durationMs": time.Since(start).Milliseconds(),
			"clientIp":   c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.Error("HTTP server error", fields)
		case status >= 400:
			log.Warn("HTTP client error", fields)
		default:
			log.Debug("HTTP request", fields)
		}
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   h.service,
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) readiness(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			h.logger.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "sessions": h.stores.Len()})
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/shared/config"
	"docanalysis-backend/internal/shared/metrics"
	"docanalysis-backend/internal/shared/server/middleware"
	"docanalysis-backend/internal/shared/server/respond"
)

const (
	apiPrefix   = "/api/v1"
	healthPath  = apiPrefix + "/health"
	metricsPath = apiPrefix + "/metrics"
)

// RouteRegistrar is implemented by domain handlers.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// HealthFunc reports dependency status for /health. A nil map means healthy.
type HealthFunc func() map[string]string

// RouterDeps carries everything the router needs from the composition root.
type RouterDeps struct {
	Config   config.Config
	Handlers []RouteRegistrar
	Health   HealthFunc
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)
	if cfg.APIKeyEnabled {
		r.Use(middleware.APIKey(cfg.APIKey, healthPath, metricsPath))
	}
	if cfg.RateLimitEnabled && cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": middleware.PerMinute(cfg.RateLimitPerMinute),
				"READ":    middleware.PerMinute(cfg.RateLimitPerMinute * 4),
			},
		}))
	}

	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		checks := map[string]string{}
		if deps.Health != nil {
			checks = deps.Health()
		}
		status := http.StatusOK
		for _, v := range checks {
			if v != "ok" {
				status = http.StatusServiceUnavailable
				break
			}
		}
		respond.JSON(c, status, gin.H{"ok": status == http.StatusOK, "checks": checks})
	})
	api.GET("/metrics", metrics.Handler())

	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
}

// rateLimitGroup exempts health and metrics endpoints and gives cheap reads a
// larger budget than uploads and pipeline runs.
func rateLimitGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case strings.HasPrefix(path, healthPath), strings.HasPrefix(path, metricsPath):
		return "UNLIMITED"
	case c.Request.Method == http.MethodGet:
		return "READ"
	default:
		return "DEFAULT"
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"studyplanner/internal/auth"
	"studyplanner/internal/httpmiddleware"
	"studyplanner/internal/logger"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// RouterConfig collects everything NewRouter wires.
type RouterConfig struct {
	Handler         *Handler
	Log             *logger.Logger
	Auth            auth.Options
	RateLimitPerMin int
	CORSOrigins     []string
	ServiceName     string
	Tracing         bool
	Checks          map[string]HealthCheck
}

// userPrefixes lists where the owner routes are mounted. "/api/users" keeps
// older clients working.
var userPrefixes = []string{"/", "/api/users"}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		name := cfg.ServiceName
		if name == "" {
			name = "studyplanner-api"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpmiddleware.RequestIDs())
	r.Use(httpmiddleware.RequestLogger(cfg.Log, "/healthz", "/metrics"))
	r.Use(httpmiddleware.Metrics())
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Timetable API running!")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(cfg.Checks))

	limiter := httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	h := cfg.Handler
	for _, prefix := range userPrefixes {
		g := r.Group(prefix, auth.OwnerAuth(cfg.Auth), limiter.GinMiddleware(ownerOrIP))
		g.GET("/profile", h.profile)
		g.POST("/subjects", h.createSubject)
		g.GET("/subjects", h.listSubjects)
		g.POST("/preferences", h.savePreferences)
		g.GET("/preferences", h.getPreferences)
		g.POST("/exclusions", h.addExclusion)
		g.GET("/exclusions", h.listExclusions)
		g.POST("/sessions", h.createSession)
		g.GET("/sessions", h.listSessions)
		g.PATCH("/sessions/:id", h.setCompleted)
		g.GET("/timetable", h.generate)
		g.POST("/save-timetable", h.saveTimetable)
		g.DELETE("/clear-sessions", h.clearSessions)
		g.GET("/export-timetable", h.exportTimetable)
		g.GET("/dashboard", h.dashboard)
	}
	return r
}

func ownerOrIP(c *gin.Context) string {
	if owner := auth.Owner(c); owner != "" {
		return "owner:" + owner
	}
	return httpmiddleware.ClientIP(c)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", httpmiddleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Disposition", httpmiddleware.HeaderRequestID, httpmiddleware.HeaderTraceID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		body := gin.H{"status": "ok"}
		status := http.StatusOK
		for name, check := range checks {
			ok := check(ctx)
			body[name] = ok
			if !ok {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		c.JSON(status, body)
	}
}

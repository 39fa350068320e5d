package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hairalyzer-backend/internal/chats"
	"hairalyzer-backend/internal/services/health"
	"hairalyzer-backend/internal/shared/auth"
	"hairalyzer-backend/internal/shared/config"
	"hairalyzer-backend/internal/shared/metrics"
	"hairalyzer-backend/internal/shared/server/middleware"
	"hairalyzer-backend/internal/shared/storage/object/local"
	"hairalyzer-backend/internal/submissions"
)

// RouterDeps carries the handlers and collaborators the router mounts.
type RouterDeps struct {
	Config            config.Config
	Verifier          auth.Verifier
	Health            *health.Service
	SubmissionHandler *submissions.Handler
	ChatHandler       *chats.Handler
	// UploadsDir is served under /uploads when photos are stored locally.
	UploadsDir  string
	RateLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	health.RegisterRoutes(r, healthSvc)
	r.GET("/metrics", metrics.Handler())
	if deps.UploadsDir != "" {
		r.Static(local.RoutePrefix, deps.UploadsDir)
	}

	api := r.Group("/api",
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(rateLimitConfig(deps)),
	)
	registerMeRoutes(api)
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "not_found", "message": "route not found"}})
	})
	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if n := deps.Config.SubmitRatePerMinute; n > 0 {
		rules[middleware.SubmitRateGroup] = middleware.RateLimitRule{Rate: float64(n) / 60, Burst: n}
	}
	if n := deps.Config.ChatRatePerMinute; n > 0 {
		rules[middleware.ChatRateGroup] = middleware.RateLimitRule{Rate: float64(n) / 60, Burst: n}
	}
	return middleware.RateLimitConfig{
		Rules: rules,
		GroupFor: middleware.GroupByRoute(map[string]string{
			"POST /api/submit":               middleware.SubmitRateGroup,
			"POST /api/submissions/:id/chat": middleware.ChatRateGroup,
		}),
		Limiter: deps.RateLimiter,
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

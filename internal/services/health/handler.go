package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hairalyzer-backend/internal/shared/server/respond"
)

// ServiceName is reported by the liveness endpoint.
const ServiceName = "hairalyzer-api"

// RegisterRoutes attaches the unauthenticated liveness and readiness routes.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{"status": "ok", "service": ServiceName})
	})
	r.GET("/api/health", func(c *gin.Context) {
		report := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
}

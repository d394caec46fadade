package api

import (
	"github.com/gin-gonic/gin"

	"github.com/donos-project/donosd/internal/api/handlers"
)

// registerRoutes mounts the management endpoints under /api/v1.
func registerRoutes(r *gin.Engine, h *handlers.Handler) {
	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Health)
	v1.GET("/stats", h.Stats)
}

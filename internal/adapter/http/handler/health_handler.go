package handler

import (
	"net/http"
	"time"

	"receipt-generator/internal/adapter/http/dto"
	"receipt-generator/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles GET /health. Every checker is pinged; any failure
// marks the service degraded and answers 503.
func HealthCheck(version string, checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps := make(map[string]string, len(checkers))
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				deps[checker.Name()] = "healthy"
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, dto.HealthResponse{
			Status:       status,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			Version:      version,
			Dependencies: deps,
		})
	}
}

// Info handles GET /.
func Info(version, renderer string) gin.HandlerFunc {
	body := dto.InfoResponse{
		Message:  "Receipt Generator API",
		Version:  version,
		Renderer: renderer,
		Endpoints: map[string]string{
			"generate": "POST /api/generate",
			"preview":  "POST /api/preview",
			"validate": "POST /api/validate",
			"health":   "GET /api/health",
			"metrics":  "GET /metrics",
		},
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, body)
	}
}

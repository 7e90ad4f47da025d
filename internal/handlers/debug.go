package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-chat-service/internal/telemetry"
)

// RegisterDebugRoutes wires endpoints that exist only when DEBUG_ROUTES
// is enabled. They are for operators checking the audit pipeline end to
// end, never for production traffic.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		requestID := requestIDFromContext(c)
		emitter.Emit(c.Request.Context(), "INFO", "Manual audit check", requestID, userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok", "request_id": requestID})
	})
}

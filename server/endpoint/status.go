package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusFunc returns a JSON-serializable snapshot of the run.
type StatusFunc func(ctx context.Context) any

// Status serves the current run snapshot, or 503 before a run is attached.
func Status(fn StatusFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if fn == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no run in progress"})
			return
		}
		c.JSON(http.StatusOK, fn(c.Request.Context()))
	}
}

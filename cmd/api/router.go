package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.GET("/status", func(c *gin.Context) {
			var lastRun string
			if t := h.scheduler.LastRun(); !t.IsZero() {
				lastRun = t.UTC().Format(time.RFC3339)
			}
			c.JSON(http.StatusOK, gin.H{
				"queue_connected":    h.queue.Connected(),
				"scheduler_last_run": lastRun,
			})
		})
	}
}

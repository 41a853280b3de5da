package reporting_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldops-reporting/internal/reporting_api/handler"
	"github.com/fieldops-reporting/internal/reporting_api/middleware"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, reportHandler *handler.ReportHandler) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	v1 := r.Group("/api/v1")
	{
		report := v1.Group("/report")
		{
			report.POST("/loads", reportHandler.StartLoad)
			report.GET("/progress", reportHandler.GetProgress)
			report.GET("/entries", reportHandler.GetEntries)
			report.GET("/summary", reportHandler.GetSummary)
			report.POST("/summary/export", reportHandler.ExportSummary)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}

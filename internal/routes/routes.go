package routes

import (
	"github.com/gin-gonic/gin"

	handler "settlement-ingest-backend/internal/handlers"
)

func RegisterRoutes(r *gin.Engine, settlementHandler *handler.SettlementHandler) {
	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	settlements := api.Group("/settlements")
	settlements.POST("/upload", settlementHandler.Upload)
	settlements.GET("/results", settlementHandler.Results)
	settlements.GET("/submissions/:id", settlementHandler.GetSubmission)
}

package http

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api/v1")
	{
		api.GET("/funds", handler.ListFunds)
		api.POST("/funds", handler.AddFund)
		api.DELETE("/funds/:code", handler.DeleteFund)
		api.POST("/funds/refresh", handler.RefreshFunds)

		api.GET("/stocks", handler.ListStocks)
		api.POST("/stocks", handler.AddStock)
		api.GET("/stocks/suggestions", handler.SuggestStocks)
		api.POST("/stocks/refresh", handler.RefreshStocks)
		api.DELETE("/stocks/:code", handler.DeleteStock)
		api.POST("/stocks/:code/up", handler.MoveStockUp)
		api.POST("/stocks/:code/down", handler.MoveStockDown)

		api.POST("/refresh", handler.RefreshAll)
		api.PUT("/visibility", handler.SetVisibility)
		api.GET("/events", handler.Events)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

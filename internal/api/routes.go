package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", handler.SignUp)
			auth.POST("/login", handler.Login)
			auth.POST("/google", handler.GoogleAuth)
			auth.POST("/verify", handler.VerifyToken)
		}

		api.GET("/regions", handler.GetRegions)
		api.GET("/regions/boundaries", handler.GetRegionBoundaries)
		api.POST("/regions/locate", handler.LocateRegion)

		authed := api.Group("", handler.RequireAuth)
		{
			authed.POST("/predict", handler.Predict)
			authed.GET("/predictions", handler.GetPredictions)
			authed.GET("/predictions/:id", handler.GetPrediction)
		}
	}
}

package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authn gin.HandlerFunc) {
	// Health check endpoint (no auth)
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	{
		// Authentication endpoints
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
			authGroup.GET("/me", authn, handler.Me)
		}

		// User endpoints (all authenticated)
		users := api.Group("/users", authn)
		{
			users.GET("/profile", handler.GetProfile)
			users.PUT("/profile", handler.UpdateProfile)
			users.GET("/me/with-rating", handler.MeWithRating)
		}

		// Credit scoring endpoints (all authenticated)
		credit := api.Group("/credit", authn)
		{
			credit.POST("/choose-method", handler.ChooseMethod)
			credit.POST("/request", handler.SubmitCreditRequest)
			credit.GET("/request/:id", handler.GetCreditRequest)
			credit.GET("/score", handler.GetLatestScore)
			credit.GET("/score/:id", handler.GetScore)
			credit.GET("/history", handler.GetHistory)
			credit.POST("/verify-on-blockchain/:report_id", handler.VerifyOnBlockchain)
			credit.POST("/upload", handler.UploadDocument)
			credit.DELETE("/documents/:id", handler.DeleteDocument)
			credit.POST("/process-document/:id", handler.ProcessDocument)
			credit.POST("/process-parsing", handler.ProcessParsing)
			credit.GET("/blockchain-records", handler.ListBlockchainRecords)
			credit.GET("/blockchain-rating", handler.BlockchainRating)
		}
	}
}

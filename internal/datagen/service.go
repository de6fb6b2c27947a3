// Package datagen implements the credit data generation microservice and the
// HTTP client the scoring pipeline uses to call it. The service wraps the
// financial feature generator behind a small JSON API so other components can
// request synthetic credit data per user.
package datagen

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kamilakurskaa/TrustFlow/internal/generator"
)

// GenerateRequest is the body of a feature generation call.
type GenerateRequest struct {
	// UserID identifies the user the features are generated for
	UserID uint64 `json:"user_id" binding:"required"`
	// HasCreditHistory controls whether debt-related features may be non-zero
	HasCreditHistory bool `json:"has_credit_history"`
}

// GenerateResponse echoes the request identity along with the generated features.
type GenerateResponse struct {
	UserID           uint64               `json:"user_id"`
	HasCreditHistory bool                 `json:"has_credit_history"`
	Features         generator.FeatureSet `json:"features"`
}

// Handler defines the generation service endpoints
type Handler interface {
	// Generate produces a synthetic feature set for a user
	// POST /api/generate
	Generate(c *gin.Context)

	// HealthCheck returns the health status of the service
	// GET /health
	HealthCheck(c *gin.Context)
}

type handler struct {
	gen *generator.Generator
}

// NewHandler creates a new generation service handler
func NewHandler(gen *generator.Generator) Handler {
	return &handler{gen: gen}
}

// Generate produces a synthetic feature set for a user
func (h *handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "validation_failed",
				"message": "Validation failed",
				"details": fmt.Sprintf("Invalid request body: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		UserID:           req.UserID,
		HasCreditHistory: req.HasCreditHistory,
		Features:         h.gen.Generate(req.HasCreditHistory),
	})
}

// HealthCheck returns the health status of the service
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "trustflow-datagen",
	})
}

// SetupRoutes configures the generation service routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/generate", handler.Generate)
	}
}

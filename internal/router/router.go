package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conectasus/referral-management-api/internal/handlers"
	"github.com/conectasus/referral-management-api/internal/service"
	"github.com/conectasus/referral-management-api/internal/utils"
	pkgutils "github.com/conectasus/referral-management-api/pkg/utils"
)

// SetupRouter configures all API routes
func SetupRouter(
	requestService *service.RequestService,
	schedulingService *service.SchedulingService,
) *gin.Engine {
	router := gin.Default()

	// Global middleware to extract headers and set context
	router.Use(func(c *gin.Context) {
		// Extract and set acting user id
		if userID := c.GetHeader("user-id"); userID != "" {
			if actorID, err := pkgutils.ParseID(userID); err == nil {
				utils.SetContextValue(c, "actorID", actorID)
			}
		}

		// Attach a correlation id for log tracing
		correlationID := c.GetHeader("correlation-id")
		if correlationID == "" {
			correlationID = pkgutils.GenerateCorrelationID()
		}
		utils.SetContextValue(c, "correlationID", correlationID)
		c.Header("correlation-id", correlationID)

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create handlers
	requestHandler := handlers.NewRequestHandler(requestService)
	schedulingHandler := handlers.NewSchedulingHandler(schedulingService)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		requests := v1.Group("/requests")
		{
			requests.POST("", requestHandler.CreateRequest)
			requests.GET("", requestHandler.ListRequests)
			requests.GET("/:requestId", requestHandler.GetRequest)
			requests.GET("/:requestId/history", requestHandler.GetHistory)
			requests.GET("/:requestId/attempts", requestHandler.ListContactAttempts)

			// Workflow actions
			requests.POST("/:requestId/classify", requestHandler.Classify)
			requests.POST("/:requestId/approve", requestHandler.Approve)
			requests.POST("/:requestId/deny", requestHandler.Deny)
			requests.POST("/:requestId/return", requestHandler.Return)
			requests.POST("/:requestId/cancel", requestHandler.Cancel)
			requests.POST("/:requestId/handle-return", requestHandler.HandleReturn)
			requests.POST("/:requestId/pickup", requestHandler.Pickup)

			// Scheduling contact attempts
			requests.POST("/:requestId/attempts", schedulingHandler.RegisterContactAttempt)
		}
	}

	return router
}

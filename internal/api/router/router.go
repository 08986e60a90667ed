package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solosphere/solosphere-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(allowedOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "solosphere-api",
		})
	})

	authHandler := handler.NewAuthHandler(deps)
	jobHandler := handler.NewJobHandler(deps)
	bidHandler := handler.NewBidHandler(deps)

	authRequired := authHandler.RequireAuth()

	// Identity token
	r.POST("/jwt", authHandler.IssueToken)
	r.GET("/logout", authHandler.Logout)

	// Jobs: browsing is public, everything mutating requires the owner
	r.GET("/jobs", jobHandler.ListJobs)
	r.GET("/all-jobs", jobHandler.SearchJobs)
	r.GET("/job/:id", jobHandler.GetJob)
	r.POST("/add-job", authRequired, jobHandler.CreateJob)
	r.PUT("/update-job/:id", authRequired, jobHandler.ReplaceJob)
	r.DELETE("/job/:id", authRequired, jobHandler.DeleteJob)
	r.GET("/jobs/:email", authRequired, jobHandler.ListJobsByBuyer)

	// Bids
	r.POST("/add-bid", authRequired, bidHandler.CreateBid)
	r.GET("/bids/:email", authRequired, bidHandler.ListBidsByWorker)
	r.GET("/bid-request/:email", authRequired, bidHandler.ListBidsByBuyer)
	r.PATCH("/update-bidStatus/:id", authRequired, bidHandler.UpdateBidStatus)

	return r
}

package transport

import (
	"time"

	"github.com/ds124wfegd/captioner/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(captionHandler *CaptionHandler, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(requestTimeout))

	api := router.Group("/api")
	{
		api.GET("/fonts", captionHandler.GetFonts)
		api.POST("/captions", captionHandler.RenderCaptions)

		jobs := api.Group("/jobs")
		{
			jobs.POST("", captionHandler.SubmitJob)
			jobs.GET("/:id", captionHandler.GetJob)
			jobs.GET("/:id/download", captionHandler.DownloadJob)
			jobs.DELETE("/:id", captionHandler.DeleteJob)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "caption-creator",
		})
	})
	return router
}

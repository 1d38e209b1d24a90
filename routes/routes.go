package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"slotify/handlers"
	"slotify/middleware"
)

// RegisterLockRoutes sets up the checkout-hold endpoints.
func RegisterLockRoutes(r *gin.Engine) {
	api := r.Group("/api/locks")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("", handlers.AcquireLock)
		api.GET("/:id", handlers.ValidateLock)
		api.DELETE("/:id", handlers.ReleaseLock)
	}
}

// RegisterBookingRoutes sets up the booking engine endpoints.
func RegisterBookingRoutes(r *gin.Engine) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("", handlers.CreateBooking)
		api.POST("/bulk", handlers.CreateBookingGroup)
		api.GET("/:id", handlers.GetBooking)
		api.POST("/:id/reschedule", handlers.RescheduleBooking)
		api.DELETE("/:id", handlers.DeleteBooking)
		api.GET("/:id/ticket", handlers.DownloadTicket)
	}
}

// RegisterSlotRoutes sets up slot listing and coverage preview.
func RegisterSlotRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.Use(middleware.TenantMiddleware())
		api.GET("/slots", handlers.ListAvailableSlots)
		api.GET("/coverage", handlers.PreviewCoverage)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Slotify"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Tenant-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterLockRoutes(r)
	RegisterBookingRoutes(r)
	RegisterSlotRoutes(r)
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joy095/boardroom/controllers/booking_controller"
	middleware "github.com/joy095/boardroom/middlewares"
	"github.com/joy095/boardroom/middlewares/auth"
	"github.com/joy095/boardroom/notifications"
	"github.com/joy095/boardroom/utils/businesstime"
)

// RegisterBookingRoutes registers all booking lifecycle routes
func RegisterBookingRoutes(router *gin.Engine, db *pgxpool.Pool, times *businesstime.Resolver, notifier notifications.Notifier) {
	bookingController := booking_controller.NewBookingController(db, times, notifier)

	// Protected routes - require authentication
	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			middleware.NewRateLimiter("20-1m", "create-booking"),
			bookingController.CreateBooking)

		protected.GET("/:booking_id",
			middleware.NewRateLimiter("30-1m", "get-booking"),
			bookingController.GetBooking)

		protected.PATCH("/:booking_id",
			middleware.NewRateLimiter("15-1m", "update-booking"),
			bookingController.UpdateBooking)

		protected.POST("/:booking_id/cancel",
			middleware.NewRateLimiter("10-1m", "cancel-booking"),
			bookingController.CancelBooking)

		protected.POST("/:booking_id/opt-out",
			middleware.NewRateLimiter("10-1m", "opt-out-booking"),
			bookingController.OptOutBooking)

		protected.DELETE("/:booking_id",
			middleware.NewRateLimiter("10-1m", "delete-booking"),
			bookingController.DeleteBooking)
	}

	myBookings := router.Group("/my-bookings")
	myBookings.Use(auth.AuthMiddleware())
	{
		myBookings.GET("",
			middleware.NewRateLimiter("30-1m", "my-bookings"),
			bookingController.GetMyBookings)
	}
}

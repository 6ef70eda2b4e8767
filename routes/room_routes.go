package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joy095/boardroom/controllers/availability_controller"
	"github.com/joy095/boardroom/controllers/room_controller"
	middleware "github.com/joy095/boardroom/middlewares"
	"github.com/joy095/boardroom/middlewares/auth"
	"github.com/joy095/boardroom/utils/businesstime"
)

// RegisterRoomRoutes registers room metadata and availability routes
func RegisterRoomRoutes(router *gin.Engine, db *pgxpool.Pool, times *businesstime.Resolver) {
	roomController := room_controller.NewRoomController(db)
	availabilityController := availability_controller.NewAvailabilityController(db, times)

	// Read routes are open to any authenticated caller
	rooms := router.Group("/rooms")
	rooms.Use(auth.AuthMiddleware())
	{
		rooms.GET("",
			middleware.NewRateLimiter("60-1m", "list-rooms"),
			roomController.GetRooms)

		rooms.GET("/:room_id",
			middleware.NewRateLimiter("60-1m", "get-room"),
			roomController.GetRoom)

		rooms.GET("/:room_id/availability",
			middleware.NewRateLimiter("60-1m", "room-availability"),
			availabilityController.GetRoomAvailability)

		// Mutations check the admin claim inside the controller
		rooms.POST("",
			middleware.NewRateLimiter("10-1m", "create-room"),
			roomController.CreateRoom)

		rooms.PATCH("/:room_id",
			middleware.NewRateLimiter("10-1m", "update-room"),
			roomController.UpdateRoom)
	}
}

package room_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/models/room_models"
	"github.com/joy095/boardroom/utils"
)

// RoomController serves room metadata. Mutations are admin-only.
type RoomController struct {
	DB *pgxpool.Pool
}

// NewRoomController creates a RoomController.
func NewRoomController(db *pgxpool.Pool) *RoomController {
	return &RoomController{DB: db}
}

// CreateRoomRequest maps the create-room body.
type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

// UpdateRoomRequest maps the update-room body; absent fields stay unchanged.
type UpdateRoomRequest struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
	IsActive *bool   `json:"is_active"`
}

// CreateRoom handles POST /rooms (admin only).
func (rc *RoomController) CreateRoom(c *gin.Context) {
	if !utils.IsAdminFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin privilege required"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ErrorLogger.Errorf("Invalid create-room body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	room, err := room_models.CreateRoom(c.Request.Context(), rc.DB, room_models.NewRoom(req.Name, req.Capacity))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// UpdateRoom handles PATCH /rooms/:room_id (admin only). Deactivating a room
// blocks new reservations without touching existing bookings.
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	if !utils.IsAdminFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin privilege required"})
		return
	}

	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	room, err := room_models.GetRoomByID(c.Request.Context(), rc.DB, roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": room_models.ErrRoomNotFound.Error()})
		return
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	updated, err := room_models.UpdateRoom(c.Request.Context(), rc.DB, room)
	if err != nil {
		if errors.Is(err, room_models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": updated})
}

// GetRooms handles GET /rooms.
func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := room_models.GetAllRooms(c.Request.Context(), rc.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom handles GET /rooms/:room_id.
func (rc *RoomController) GetRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
		return
	}

	room, err := room_models.GetRoomByID(c.Request.Context(), rc.DB, roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": room_models.ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

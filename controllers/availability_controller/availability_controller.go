package availability_controller

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/models/booking_models"
	"github.com/joy095/boardroom/models/room_models"
	"github.com/joy095/boardroom/utils/businesstime"
)

const defaultSlotGranularityMinutes = 30

// Slot is a bookable free interval within working hours.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// FreeSlots walks the working-hours window at the given granularity and
// returns the slots that no booked interval overlaps. Booked intervals are
// half-open, so a meeting ending at a slot boundary leaves that slot free.
func FreeSlots(workStart, workEnd time.Time, granularity time.Duration, booked []booking_models.BookedInterval) []Slot {
	var free []Slot
	for cursor := workStart; !cursor.Add(granularity).After(workEnd); cursor = cursor.Add(granularity) {
		slotEnd := cursor.Add(granularity)
		blocked := false
		for _, b := range booked {
			if booking_models.Overlaps(cursor, slotEnd, b.StartTime, b.EndTime) {
				blocked = true
				break
			}
		}
		if !blocked {
			free = append(free, Slot{StartTime: cursor, EndTime: slotEnd})
		}
	}
	return free
}

// AvailabilityController serves the per-room availability view: booked
// intervals plus derived free slots for a business-local date.
type AvailabilityController struct {
	DB          *pgxpool.Pool
	Times       *businesstime.Resolver
	Granularity time.Duration
}

// NewAvailabilityController reads SLOT_GRANULARITY_MINUTES (default 30).
func NewAvailabilityController(db *pgxpool.Pool, times *businesstime.Resolver) *AvailabilityController {
	granularity := defaultSlotGranularityMinutes
	if raw := os.Getenv("SLOT_GRANULARITY_MINUTES"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			granularity = v
		} else {
			logger.WarnLogger.Warnf("Invalid SLOT_GRANULARITY_MINUTES value %q, using default %d", raw, defaultSlotGranularityMinutes)
		}
	}
	return &AvailabilityController{
		DB:          db,
		Times:       times,
		Granularity: time.Duration(granularity) * time.Minute,
	}
}

// GetRoomAvailability handles GET /rooms/:room_id/availability?date=YYYY-MM-DD.
func (ac *AvailabilityController) GetRoomAvailability(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = ac.Times.ToBusinessLocal(time.Now()).Format("2006-01-02")
	}

	dayStart, dayEnd, err := ac.Times.DayWindow(date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := room_models.GetRoomByID(c.Request.Context(), ac.DB, roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": room_models.ErrRoomNotFound.Error()})
		return
	}

	booked, err := booking_models.GetBookingsForRoomWindow(c.Request.Context(), ac.DB, roomID, dayStart, dayEnd)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch availability for room %s: %v", roomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch availability"})
		return
	}

	workStart, workEnd := ac.Times.WorkingWindow(dayStart.Year(), dayStart.Month(), dayStart.Day())

	c.JSON(http.StatusOK, gin.H{
		"room":       room,
		"date":       date,
		"booked":     booked,
		"free_slots": FreeSlots(workStart, workEnd, ac.Granularity, booked),
	})
}

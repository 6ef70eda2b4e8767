package booking_controller

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/models/audit_models"
	"github.com/joy095/boardroom/models/booking_models"
	"github.com/joy095/boardroom/models/room_models"
	"github.com/joy095/boardroom/models/shared_models"
	"github.com/joy095/boardroom/notifications"
	"github.com/joy095/boardroom/utils"
	"github.com/joy095/boardroom/utils/businesstime"
)

const defaultMinBookingMinutes = 30

// BookingController owns the booking lifecycle: creation through the conflict
// resolver, opt-out, cancellation, update and deletion, plus the HTTP
// handlers that drive them.
type BookingController struct {
	DB       *pgxpool.Pool
	Times    *businesstime.Resolver
	Notifier notifications.Notifier

	MinDuration         time.Duration
	EnforceWorkingHours bool

	now func() time.Time
}

// NewBookingController builds a controller configured from the environment
// (MIN_BOOKING_MINUTES, ENFORCE_WORKING_HOURS).
func NewBookingController(db *pgxpool.Pool, times *businesstime.Resolver, notifier notifications.Notifier) *BookingController {
	minMinutes := defaultMinBookingMinutes
	if raw := os.Getenv("MIN_BOOKING_MINUTES"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			minMinutes = v
		} else {
			logger.WarnLogger.Warnf("Invalid MIN_BOOKING_MINUTES value %q, using default %d", raw, defaultMinBookingMinutes)
		}
	}

	enforceHours := true
	if raw := os.Getenv("ENFORCE_WORKING_HOURS"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			enforceHours = v
		}
	}

	return &BookingController{
		DB:                  db,
		Times:               times,
		Notifier:            notifier,
		MinDuration:         time.Duration(minMinutes) * time.Minute,
		EnforceWorkingHours: enforceHours,
		now:                 time.Now,
	}
}

// ValidateInterval applies the synchronous validation policy: future start,
// working hours, minimum duration. Runs before any storage is touched.
func (bc *BookingController) ValidateInterval(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidInterval
	}
	if !start.After(bc.now()) {
		return ErrPastStart
	}
	if bc.EnforceWorkingHours {
		if !bc.Times.IsWithinWorkingHours(start) || !bc.Times.IsWithinWorkingHours(end) {
			return ErrOutsideWorkingHours
		}
	}
	if end.Sub(start) < bc.MinDuration {
		return ErrTooShort
	}
	return nil
}

// Create validates the request, reserves the room atomically and emits the
// created event. Returns the persisted booking or the rejection.
func (bc *BookingController) Create(ctx context.Context, organizerID, roomID uuid.UUID, start, end time.Time,
	purpose, notes string, attendees []uuid.UUID, external []shared_models.ExternalInvitee) (*booking_models.Booking, error) {

	if err := bc.ValidateInterval(start, end); err != nil {
		return nil, err
	}

	room, err := room_models.GetRoomByID(ctx, bc.DB, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, ErrRoomInactive
	}

	booking, err := booking_models.NewBooking(roomID, organizerID, start, end, purpose, notes, attendees, external)
	if err != nil {
		return nil, err
	}

	created, err := booking_models.ReserveBooking(ctx, bc.DB, booking)
	if err != nil {
		return nil, err
	}

	_ = audit_models.RecordLifecycleEvent(ctx, bc.DB, created.ID, organizerID, shared_models.AuditActionCreated, false)
	bc.Notifier.Dispatch(ctx, notifications.Event{Kind: notifications.KindCreated, Booking: created})
	return created, nil
}

// OptOut removes a non-organizer attendee from the booking and notifies the
// organizer. The room reservation itself is untouched.
func (bc *BookingController) OptOut(ctx context.Context, bookingID, userID uuid.UUID) (*booking_models.Booking, error) {
	booking, err := booking_models.OptOutAttendee(ctx, bc.DB, bookingID, userID)
	if err != nil {
		return nil, err
	}

	_ = audit_models.RecordLifecycleEvent(ctx, bc.DB, bookingID, userID, shared_models.AuditActionOptOut, false)
	bc.Notifier.Dispatch(ctx, notifications.Event{
		Kind:     notifications.KindOptOutNotice,
		Booking:  booking,
		OptedOut: userID,
	})
	return booking, nil
}

// Cancel marks the booking cancelled. Only the organizer or an admin may
// cancel; a repeated cancel is a no-op success and emits nothing.
func (bc *BookingController) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, asAdmin bool) (*booking_models.Booking, error) {
	booking, err := booking_models.GetBookingByID(ctx, bc.DB, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OrganizerID != actorID && !asAdmin {
		return nil, ErrNotAuthorized
	}

	cancelled, changed, err := booking_models.CancelBooking(ctx, bc.DB, bookingID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return cancelled, nil
	}

	_ = audit_models.RecordLifecycleEvent(ctx, bc.DB, bookingID, actorID, shared_models.AuditActionCancelled, asAdmin)
	bc.Notifier.Dispatch(ctx, notifications.Event{Kind: notifications.KindCancelled, Booking: cancelled})
	return cancelled, nil
}

// UpdateFields carries the organizer-editable booking fields. Nil pointers
// mean "leave unchanged".
type UpdateFields struct {
	RoomID    *uuid.UUID
	StartTime *time.Time
	EndTime   *time.Time
	Purpose   *string
	Notes     *string
}

// Update applies field changes. Interval or room changes re-run the full
// conflict check (excluding the booking's own reservation); purpose/notes
// changes commit directly.
func (bc *BookingController) Update(ctx context.Context, bookingID, actorID uuid.UUID, fields UpdateFields) (*booking_models.Booking, error) {
	booking, err := booking_models.GetBookingByID(ctx, bc.DB, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OrganizerID != actorID {
		return nil, ErrNotAuthorized
	}
	if booking.Status == shared_models.BookingStatusCancelled {
		return nil, booking_models.ErrBookingAlreadyCancelled
	}

	rebook := false
	if fields.RoomID != nil && *fields.RoomID != booking.RoomID {
		booking.RoomID = *fields.RoomID
		rebook = true
	}
	if fields.StartTime != nil && !fields.StartTime.Equal(booking.StartTime) {
		booking.StartTime = fields.StartTime.UTC()
		rebook = true
	}
	if fields.EndTime != nil && !fields.EndTime.Equal(booking.EndTime) {
		booking.EndTime = fields.EndTime.UTC()
		rebook = true
	}
	if fields.Purpose != nil {
		booking.Purpose = *fields.Purpose
	}
	if fields.Notes != nil {
		booking.Notes = *fields.Notes
	}

	var updated *booking_models.Booking
	if rebook {
		if err := bc.ValidateInterval(booking.StartTime, booking.EndTime); err != nil {
			return nil, err
		}
		room, err := room_models.GetRoomByID(ctx, bc.DB, booking.RoomID)
		if err != nil {
			return nil, err
		}
		if !room.IsActive {
			return nil, ErrRoomInactive
		}
		updated, err = booking_models.RescheduleBooking(ctx, bc.DB, booking)
		if err != nil {
			return nil, err
		}
	} else {
		updated, err = booking_models.UpdateBookingDetails(ctx, bc.DB, bookingID, booking.Purpose, booking.Notes)
		if err != nil {
			return nil, err
		}
	}

	_ = audit_models.RecordLifecycleEvent(ctx, bc.DB, bookingID, actorID, shared_models.AuditActionUpdated, false)
	return updated, nil
}

// Delete hard-deletes the booking. Organizer or admin only; no notifications
// are sent, unlike cancel.
func (bc *BookingController) Delete(ctx context.Context, bookingID, actorID uuid.UUID, asAdmin bool) error {
	booking, err := booking_models.GetBookingByID(ctx, bc.DB, bookingID)
	if err != nil {
		return err
	}
	if booking.OrganizerID != actorID && !asAdmin {
		return ErrNotAuthorized
	}

	if err := booking_models.DeleteBooking(ctx, bc.DB, bookingID); err != nil {
		return err
	}

	_ = audit_models.RecordLifecycleEvent(ctx, bc.DB, bookingID, actorID, shared_models.AuditActionDeleted, asAdmin)
	return nil
}

// --- HTTP layer ---

// CreateBookingRequest maps the create-booking body.
type CreateBookingRequest struct {
	RoomID           uuid.UUID                       `json:"room_id" binding:"required"`
	StartTime        time.Time                       `json:"start_time" binding:"required"`
	EndTime          time.Time                       `json:"end_time" binding:"required"`
	Purpose          string                          `json:"purpose" binding:"required"`
	Notes            string                          `json:"notes"`
	AttendeeIDs      []uuid.UUID                     `json:"attendee_ids"`
	ExternalInvitees []shared_models.ExternalInvitee `json:"external_invitees"`
}

// UpdateBookingRequest maps the update-booking body; absent fields stay
// unchanged.
type UpdateBookingRequest struct {
	RoomID    *uuid.UUID `json:"room_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Purpose   *string    `json:"purpose"`
	Notes     *string    `json:"notes"`
}

// CreateBooking handles POST /bookings.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	logger.InfoLogger.Info("CreateBooking controller hit...")

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ErrorLogger.Errorf("Invalid create-booking body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	booking, err := bc.Create(c.Request.Context(), userID, req.RoomID, req.StartTime, req.EndTime,
		req.Purpose, req.Notes, req.AttendeeIDs, req.ExternalInvitees)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// UpdateBooking handles PATCH /bookings/:booking_id.
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ErrorLogger.Errorf("Invalid update-booking body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	booking, err := bc.Update(c.Request.Context(), bookingID, userID, UpdateFields{
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		Notes:     req.Notes,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CancelBooking handles POST /bookings/:booking_id/cancel.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	booking, err := bc.Cancel(c.Request.Context(), bookingID, userID, utils.IsAdminFromContext(c))
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully", "booking": booking})
}

// OptOutBooking handles POST /bookings/:booking_id/opt-out.
func (bc *BookingController) OptOutBooking(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	booking, err := bc.OptOut(c.Request.Context(), bookingID, userID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Opted out successfully", "booking": booking})
}

// DeleteBooking handles DELETE /bookings/:booking_id.
func (bc *BookingController) DeleteBooking(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	if err := bc.Delete(c.Request.Context(), bookingID, userID, utils.IsAdminFromContext(c)); err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}

// GetBooking handles GET /bookings/:booking_id. Visible to the organizer,
// attendees and admins.
func (bc *BookingController) GetBooking(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	booking, err := booking_models.GetBookingByID(c.Request.Context(), bc.DB, bookingID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	if booking.OrganizerID != userID && !booking.IsAttendee(userID) && !utils.IsAdminFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": ErrNotAuthorized.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GetMyBookings handles GET /my-bookings with pagination and an optional
// status filter.
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	status := c.Query("status")

	bookings, total, err := booking_models.GetBookingsForUser(c.Request.Context(), bc.DB, userID, status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// respondBookingError maps lifecycle errors onto HTTP responses. Conflicts
// include the blocking booking so the client can explain the rejection.
func respondBookingError(c *gin.Context, err error) {
	var conflict *booking_models.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":            "slot already booked",
			"blocking_booking": conflict,
		})
		return
	}

	switch {
	case errors.Is(err, ErrInvalidInterval),
		errors.Is(err, ErrPastStart),
		errors.Is(err, ErrOutsideWorkingHours),
		errors.Is(err, ErrTooShort),
		errors.Is(err, ErrRoomInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking_models.ErrBookingNotFound),
		errors.Is(err, room_models.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotAuthorized),
		errors.Is(err, booking_models.ErrOrganizerCannotOptOut),
		errors.Is(err, booking_models.ErrNotAnAttendee):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, booking_models.ErrBookingAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.ErrorLogger.Errorf("Unexpected booking error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

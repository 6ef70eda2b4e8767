package booking_controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/models/booking_models"
	"github.com/joy095/boardroom/models/room_models"
	"github.com/joy095/boardroom/utils/businesstime"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLoggers()
	os.Exit(m.Run())
}

// testController builds a controller with a fixed clock and UTC working hours
// so validation runs without a database.
func testController(t *testing.T, now time.Time) *BookingController {
	t.Helper()
	times, err := businesstime.NewResolver("UTC", 7, 16)
	require.NoError(t, err)
	return &BookingController{
		Times:               times,
		MinDuration:         30 * time.Minute,
		EnforceWorkingHours: true,
		now:                 func() time.Time { return now },
	}
}

func TestValidateInterval(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	bc := testController(t, now)
	day := func(h, m int) time.Time { return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC) }
	nextDay := func(h, m int) time.Time { return time.Date(2026, 3, 11, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		start, end time.Time
		wantErr    error
	}{
		{"valid morning meeting", day(9, 0), day(10, 0), nil},
		{"valid at opening", nextDay(7, 0), nextDay(8, 0), nil},
		{"valid ending at close", day(15, 0), day(16, 0), nil},
		{"end before start", day(10, 0), day(9, 0), ErrInvalidInterval},
		{"zero duration", day(10, 0), day(10, 0), ErrInvalidInterval},
		{"start in the past", day(7, 30), day(9, 0), ErrPastStart},
		{"start equals now", day(8, 0), day(9, 0), ErrPastStart},
		{"before opening", nextDay(6, 0), nextDay(8, 0), ErrOutsideWorkingHours},
		{"past closing", day(15, 30), day(16, 30), ErrOutsideWorkingHours},
		{"too short", day(9, 0), day(9, 15), ErrTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bc.ValidateInterval(tt.start, tt.end)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIntervalHoursNotEnforced(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	bc := testController(t, now)
	bc.EnforceWorkingHours = false

	// A late-night booking passes once working hours are switched off.
	start := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	assert.NoError(t, bc.ValidateInterval(start, start.Add(time.Hour)))
}

func TestRespondBookingError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid interval", ErrInvalidInterval, http.StatusBadRequest},
		{"past start", ErrPastStart, http.StatusBadRequest},
		{"outside working hours", ErrOutsideWorkingHours, http.StatusBadRequest},
		{"too short", ErrTooShort, http.StatusBadRequest},
		{"room inactive", ErrRoomInactive, http.StatusBadRequest},
		{"booking not found", booking_models.ErrBookingNotFound, http.StatusNotFound},
		{"room not found", room_models.ErrRoomNotFound, http.StatusNotFound},
		{"not authorized", ErrNotAuthorized, http.StatusForbidden},
		{"organizer opt-out", booking_models.ErrOrganizerCannotOptOut, http.StatusForbidden},
		{"not an attendee", booking_models.ErrNotAnAttendee, http.StatusForbidden},
		{"already cancelled", booking_models.ErrBookingAlreadyCancelled, http.StatusConflict},
		{"unexpected error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondBookingError(c, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRespondBookingErrorConflictPayload(t *testing.T) {
	conflict := &booking_models.ConflictError{
		BlockingID:      uuid.New(),
		BlockingStart:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		BlockingEnd:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		BlockingPurpose: "Board meeting",
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondBookingError(c, conflict)

	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error           string                       `json:"error"`
		BlockingBooking booking_models.ConflictError `json:"blocking_booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, conflict.BlockingID, body.BlockingBooking.BlockingID)
	assert.Equal(t, "Board meeting", body.BlockingBooking.BlockingPurpose)
	assert.True(t, conflict.BlockingStart.Equal(body.BlockingBooking.BlockingStart))
}

package booking_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joy095/boardroom/models/shared_models"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical intervals", at(0, 0), at(1, 0), at(0, 0), at(1, 0), true},
		{"partial overlap", at(0, 0), at(1, 0), at(0, 30), at(1, 30), true},
		{"containment", at(0, 0), at(2, 0), at(0, 30), at(1, 0), true},
		{"touching edges do not conflict", at(0, 0), at(1, 0), at(1, 0), at(2, 0), false},
		{"touching edges reversed", at(1, 0), at(2, 0), at(0, 0), at(1, 0), false},
		{"disjoint", at(0, 0), at(1, 0), at(3, 0), at(4, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestNewBookingAddsOrganizerToAttendees(t *testing.T) {
	organizer := uuid.New()
	other := uuid.New()

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	booking, err := NewBooking(uuid.New(), organizer, start, start.Add(time.Hour),
		"Quarterly review", "", []uuid.UUID{other}, nil)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{organizer, other}, booking.Attendees)
	assert.Equal(t, shared_models.BookingStatusConfirmed, booking.Status)
	assert.True(t, booking.IsAttendee(organizer))
	assert.True(t, booking.IsAttendee(other))
}

func TestNewBookingDeduplicatesAttendees(t *testing.T) {
	organizer := uuid.New()
	other := uuid.New()

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	booking, err := NewBooking(uuid.New(), organizer, start, start.Add(time.Hour),
		"Standup", "", []uuid.UUID{organizer, other, other, uuid.Nil}, nil)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{organizer, other}, booking.Attendees)
}

func TestNewBookingNormalizesToUTC(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, loc)
	booking, err := NewBooking(uuid.New(), uuid.New(), start, start.Add(time.Hour), "Sync", "", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, booking.StartTime.Location())
	assert.Equal(t, time.UTC, booking.EndTime.Location())
	assert.True(t, booking.StartTime.Equal(start))
}

func TestIsAttendeeMissingUser(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	booking, err := NewBooking(uuid.New(), uuid.New(), start, start.Add(time.Hour), "Sync", "", nil, nil)
	require.NoError(t, err)

	assert.False(t, booking.IsAttendee(uuid.New()))
}

func TestConflictErrorMessage(t *testing.T) {
	conflict := &ConflictError{
		BlockingID:      uuid.New(),
		BlockingStart:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		BlockingEnd:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		BlockingPurpose: "Board meeting",
	}
	assert.Contains(t, conflict.Error(), "Board meeting")
	assert.Contains(t, conflict.Error(), "2026-03-10T09:00:00Z")
}

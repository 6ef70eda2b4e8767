//go:build integration

package booking_models

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/models/shared_models"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

const bookingsSchema = `
CREATE TABLE bookings (
	id UUID PRIMARY KEY,
	room_id UUID NOT NULL,
	organizer_id UUID NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	purpose TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	attendees UUID[] NOT NULL DEFAULT '{}',
	external_invitees JSONB,
	status TEXT NOT NULL,
	reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

func setupBookingDB(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, bookingsSchema)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup
}

func mustNewBooking(t *testing.T, roomID, organizerID uuid.UUID, start, end time.Time, attendees ...uuid.UUID) *Booking {
	t.Helper()
	booking, err := NewBooking(roomID, organizerID, start, end, "Planning session", "", attendees, nil)
	require.NoError(t, err)
	return booking
}

func TestIntegration_ConcurrentOverlappingReservations(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupBookingDB(t, ctx)
	defer cleanup()

	roomID := uuid.New()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(time.Hour)

	const attempts = 4
	results := make(chan error, attempts)
	ready := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		booking := mustNewBooking(t, roomID, uuid.New(), start, end)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ready
			_, err := ReserveBooking(ctx, pool, booking)
			results <- err
		}()
	}
	close(ready)
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.True(t, conflict.BlockingStart.Equal(start))
		conflicts++
	}
	assert.Equal(t, 1, wins, "exactly one overlapping reservation must win")
	assert.Equal(t, attempts-1, conflicts)

	booked, err := GetBookingsForRoomWindow(ctx, pool, roomID, start.Add(-time.Hour), end.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, booked, 1)
}

func TestIntegration_TouchingEdgesBothReserve(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupBookingDB(t, ctx)
	defer cleanup()

	roomID := uuid.New()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	first := mustNewBooking(t, roomID, uuid.New(), start, start.Add(time.Hour))
	_, err := ReserveBooking(ctx, pool, first)
	require.NoError(t, err)

	// [10, 11) then [11, 12): shared boundary, no overlap.
	second := mustNewBooking(t, roomID, uuid.New(), start.Add(time.Hour), start.Add(2*time.Hour))
	_, err = ReserveBooking(ctx, pool, second)
	require.NoError(t, err)

	booked, err := GetBookingsForRoomWindow(ctx, pool, roomID, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, booked, 2)
}

func TestIntegration_CancelIdempotentAndFreesSlot(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupBookingDB(t, ctx)
	defer cleanup()

	roomID := uuid.New()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(time.Hour)

	booking := mustNewBooking(t, roomID, uuid.New(), start, end)
	_, err := ReserveBooking(ctx, pool, booking)
	require.NoError(t, err)

	cancelled, changed, err := CancelBooking(ctx, pool, booking.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, shared_models.BookingStatusCancelled, cancelled.Status)

	// Second cancel is a no-op success, not an error.
	again, changed, err := CancelBooking(ctx, pool, booking.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, shared_models.BookingStatusCancelled, again.Status)

	// The cancelled booking no longer blocks the slot.
	booked, err := GetBookingsForRoomWindow(ctx, pool, roomID, start, end)
	require.NoError(t, err)
	assert.Empty(t, booked)

	rebooked := mustNewBooking(t, roomID, uuid.New(), start, end)
	_, err = ReserveBooking(ctx, pool, rebooked)
	require.NoError(t, err)
}

func TestIntegration_OptOutRules(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupBookingDB(t, ctx)
	defer cleanup()

	roomID := uuid.New()
	organizer := uuid.New()
	attendee := uuid.New()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	booking := mustNewBooking(t, roomID, organizer, start, start.Add(time.Hour), attendee)
	_, err := ReserveBooking(ctx, pool, booking)
	require.NoError(t, err)

	_, err = OptOutAttendee(ctx, pool, booking.ID, organizer)
	assert.ErrorIs(t, err, ErrOrganizerCannotOptOut)

	_, err = OptOutAttendee(ctx, pool, booking.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotAnAttendee)

	shrunk, err := OptOutAttendee(ctx, pool, booking.ID, attendee)
	require.NoError(t, err)
	assert.True(t, shrunk.IsAttendee(organizer), "opt-out must never remove the organizer")
	assert.False(t, shrunk.IsAttendee(attendee))

	// A cancel after the opt-out sees the shrunk attendee set.
	cancelled, changed, err := CancelBooking(ctx, pool, booking.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []uuid.UUID{organizer}, cancelled.Attendees)

	// Opting out of a cancelled booking must not revive or mutate it.
	_, err = OptOutAttendee(ctx, pool, booking.ID, organizer)
	assert.ErrorIs(t, err, ErrBookingAlreadyCancelled)
}

func TestIntegration_ReminderClaim(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupBookingDB(t, ctx)
	defer cleanup()

	roomID := uuid.New()
	now := time.Now().UTC()
	start := now.Add(10 * time.Minute)

	booking := mustNewBooking(t, roomID, uuid.New(), start, start.Add(time.Hour))
	_, err := ReserveBooking(ctx, pool, booking)
	require.NoError(t, err)

	due, err := GetDueReminders(ctx, pool, now, now.Add(15*time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, booking.ID, due[0].ID)

	won, err := MarkReminderSent(ctx, pool, booking.ID)
	require.NoError(t, err)
	assert.True(t, won)

	// A racing second claim loses, and the booking drops out of the scan.
	won, err = MarkReminderSent(ctx, pool, booking.ID)
	require.NoError(t, err)
	assert.False(t, won)

	due, err = GetDueReminders(ctx, pool, now, now.Add(15*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)

	// A booking cancelled between the scan and the claim is not claimable.
	late := mustNewBooking(t, roomID, uuid.New(), start.Add(2*time.Hour), start.Add(3*time.Hour))
	_, err = ReserveBooking(ctx, pool, late)
	require.NoError(t, err)

	_, changed, err := CancelBooking(ctx, pool, late.ID)
	require.NoError(t, err)
	require.True(t, changed)

	won, err = MarkReminderSent(ctx, pool, late.ID)
	require.NoError(t, err)
	assert.False(t, won, "a cancelled booking must not be claimed for a reminder")
}

package booking_models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/models/shared_models"
)

var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrNotAnAttendee           = errors.New("user is not an attendee of this booking")
	ErrOrganizerCannotOptOut   = errors.New("organizer cannot opt out, cancel the booking instead")
)

// ConflictError is returned when a requested interval overlaps a confirmed
// booking on the same room. It carries the blocking booking so the caller can
// explain the rejection.
type ConflictError struct {
	BlockingID      uuid.UUID `json:"blocking_id"`
	BlockingStart   time.Time `json:"blocking_start"`
	BlockingEnd     time.Time `json:"blocking_end"`
	BlockingPurpose string    `json:"blocking_purpose"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot already booked by %q from %s to %s",
		e.BlockingPurpose, e.BlockingStart.Format(time.RFC3339), e.BlockingEnd.Format(time.RFC3339))
}

// Booking represents a reservation of a boardroom for a half-open interval
// [StartTime, EndTime). The organizer is always a member of Attendees.
type Booking struct {
	ID               uuid.UUID                       `json:"id"`
	RoomID           uuid.UUID                       `json:"room_id"`
	OrganizerID      uuid.UUID                       `json:"organizer_id"`
	StartTime        time.Time                       `json:"start_time"`
	EndTime          time.Time                       `json:"end_time"`
	Purpose          string                          `json:"purpose"`
	Notes            string                          `json:"notes"`
	Attendees        []uuid.UUID                     `json:"attendees"`
	ExternalInvitees []shared_models.ExternalInvitee `json:"external_invitees"`
	Status           string                          `json:"status"`
	ReminderSent     bool                            `json:"reminder_sent"`
	CreatedAt        time.Time                       `json:"created_at"`
	UpdatedAt        time.Time                       `json:"updated_at"`
}

// BookedInterval is the availability-index projection of a confirmed booking.
type BookedInterval struct {
	BookingID uuid.UUID `json:"booking_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Purpose   string    `json:"purpose"`
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching edges do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// NewBooking builds a confirmed Booking. The organizer is added to the
// attendee set if absent and duplicate attendee ids are dropped.
func NewBooking(roomID, organizerID uuid.UUID, start, end time.Time, purpose, notes string,
	attendees []uuid.UUID, external []shared_models.ExternalInvitee) (*Booking, error) {

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}

	seen := map[uuid.UUID]bool{organizerID: true}
	members := []uuid.UUID{organizerID}
	for _, a := range attendees {
		if a == uuid.Nil || seen[a] {
			continue
		}
		seen[a] = true
		members = append(members, a)
	}

	now := time.Now().UTC()
	return &Booking{
		ID:               id,
		RoomID:           roomID,
		OrganizerID:      organizerID,
		StartTime:        start.UTC(),
		EndTime:          end.UTC(),
		Purpose:          purpose,
		Notes:            notes,
		Attendees:        members,
		ExternalInvitees: external,
		Status:           shared_models.BookingStatusConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsAttendee reports whether the user is currently on the attendee list.
func (b *Booking) IsAttendee(userID uuid.UUID) bool {
	for _, a := range b.Attendees {
		if a == userID {
			return true
		}
	}
	return false
}

const bookingColumns = `
	id, room_id, organizer_id, start_time, end_time, purpose, notes,
	attendees, external_invitees, status, reminder_sent, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	var externalJSON []byte
	err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.OrganizerID,
		&b.StartTime,
		&b.EndTime,
		&b.Purpose,
		&b.Notes,
		&b.Attendees,
		&externalJSON,
		&b.Status,
		&b.ReminderSent,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(externalJSON) > 0 {
		if err := json.Unmarshal(externalJSON, &b.ExternalInvitees); err != nil {
			return nil, fmt.Errorf("failed to decode external invitees: %w", err)
		}
	}
	return b, nil
}

// lockRoom takes a transaction-scoped advisory lock derived from the room id.
// All reservation attempts for one room serialize on this lock; different
// rooms never contend.
func lockRoom(ctx context.Context, tx pgx.Tx, roomID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, roomID.String()); err != nil {
		return fmt.Errorf("failed to acquire room lock: %w", err)
	}
	return nil
}

// findBlocking returns the earliest confirmed booking on the room whose
// interval overlaps [start, end), excluding excludeID. Half-open semantics:
// a booking ending exactly at start does not block.
func findBlocking(ctx context.Context, tx pgx.Tx, roomID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (*ConflictError, error) {
	query := `
		SELECT id, start_time, end_time, purpose
		FROM bookings
		WHERE room_id = $1
		  AND status = $2
		  AND start_time < $3
		  AND end_time > $4
		  AND id <> $5
		ORDER BY start_time ASC
		LIMIT 1`

	blocking := &ConflictError{}
	err := tx.QueryRow(ctx, query, roomID, shared_models.BookingStatusConfirmed, end, start, excludeID).Scan(
		&blocking.BlockingID,
		&blocking.BlockingStart,
		&blocking.BlockingEnd,
		&blocking.BlockingPurpose,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("overlap check failed: %w", err)
	}
	return blocking, nil
}

// ReserveBooking atomically checks the room for overlapping confirmed bookings
// and inserts the new booking. At most one of two conflicting concurrent
// attempts succeeds; the loser receives a *ConflictError.
func ReserveBooking(ctx context.Context, db *pgxpool.Pool, booking *Booking) (*Booking, error) {
	logger.InfoLogger.Infof("Attempting to reserve room %s for [%s, %s)", booking.RoomID, booking.StartTime, booking.EndTime)

	externalJSON, err := json.Marshal(booking.ExternalInvitees)
	if err != nil {
		return nil, fmt.Errorf("failed to encode external invitees: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reservation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockRoom(ctx, tx, booking.RoomID); err != nil {
		return nil, err
	}

	blocking, err := findBlocking(ctx, tx, booking.RoomID, booking.StartTime, booking.EndTime, booking.ID)
	if err != nil {
		return nil, err
	}
	if blocking != nil {
		logger.WarnLogger.Warnf("Reservation on room %s rejected, blocked by booking %s", booking.RoomID, blocking.BlockingID)
		return nil, blocking
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	var insertedID uuid.UUID
	err = tx.QueryRow(ctx, query,
		booking.ID, booking.RoomID, booking.OrganizerID, booking.StartTime, booking.EndTime,
		booking.Purpose, booking.Notes, booking.Attendees, externalJSON,
		booking.Status, booking.ReminderSent, booking.CreatedAt, booking.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking for room %s: %v", booking.RoomID, err)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	booking.ID = insertedID
	logger.InfoLogger.Infof("Booking %s confirmed on room %s", booking.ID, booking.RoomID)
	return booking, nil
}

// RescheduleBooking moves a confirmed booking to a new room and/or interval,
// re-running the overlap check (excluding the booking's own reservation)
// under the target room's lock.
func RescheduleBooking(ctx context.Context, db *pgxpool.Pool, booking *Booking) (*Booking, error) {
	logger.InfoLogger.Infof("Rescheduling booking %s to room %s [%s, %s)", booking.ID, booking.RoomID, booking.StartTime, booking.EndTime)

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reschedule transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockRoom(ctx, tx, booking.RoomID); err != nil {
		return nil, err
	}

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, booking.ID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to lock booking %s: %w", booking.ID, err)
	}
	if status == shared_models.BookingStatusCancelled {
		return nil, ErrBookingAlreadyCancelled
	}

	blocking, err := findBlocking(ctx, tx, booking.RoomID, booking.StartTime, booking.EndTime, booking.ID)
	if err != nil {
		return nil, err
	}
	if blocking != nil {
		logger.WarnLogger.Warnf("Reschedule of booking %s rejected, blocked by booking %s", booking.ID, blocking.BlockingID)
		return nil, blocking
	}

	query := `
		UPDATE bookings
		SET room_id = $2, start_time = $3, end_time = $4, purpose = $5, notes = $6, updated_at = $7
		WHERE id = $1
		RETURNING updated_at`

	booking.UpdatedAt = time.Now().UTC()
	var updatedAt time.Time
	err = tx.QueryRow(ctx, query,
		booking.ID, booking.RoomID, booking.StartTime, booking.EndTime,
		booking.Purpose, booking.Notes, booking.UpdatedAt,
	).Scan(&updatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to reschedule booking %s: %v", booking.ID, err)
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reschedule: %w", err)
	}

	booking.UpdatedAt = updatedAt
	logger.InfoLogger.Infof("Booking %s rescheduled successfully", booking.ID)
	return booking, nil
}

// GetBookingByID fetches a booking by id.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Booking %s not found", bookingID)
			return nil, ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return booking, nil
}

// GetBookingsForRoomWindow returns confirmed bookings on the room whose
// intervals intersect [winStart, winEnd), ordered by start ascending. This is
// the availability-index read path; it is derived purely from booking rows.
func GetBookingsForRoomWindow(ctx context.Context, db *pgxpool.Pool, roomID uuid.UUID, winStart, winEnd time.Time) ([]BookedInterval, error) {
	query := `
		SELECT id, start_time, end_time, purpose
		FROM bookings
		WHERE room_id = $1
		  AND status = $2
		  AND start_time < $3
		  AND end_time > $4
		ORDER BY start_time ASC`

	rows, err := db.Query(ctx, query, roomID, shared_models.BookingStatusConfirmed, winEnd, winStart)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query bookings for room %s: %v", roomID, err)
		return nil, fmt.Errorf("failed to fetch room bookings: %w", err)
	}
	defer rows.Close()

	var booked []BookedInterval
	for rows.Next() {
		var bi BookedInterval
		if err := rows.Scan(&bi.BookingID, &bi.StartTime, &bi.EndTime, &bi.Purpose); err != nil {
			return nil, fmt.Errorf("failed to scan booked interval: %w", err)
		}
		booked = append(booked, bi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during booked interval iteration: %w", err)
	}

	logger.InfoLogger.Infof("Fetched %d confirmed bookings for room %s in window", len(booked), roomID)
	return booked, nil
}

// CancelBooking marks the booking cancelled. A second cancellation of an
// already-cancelled booking is a no-op success; the returned flag tells the
// caller whether the status actually changed (and events should fire).
func CancelBooking(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, bool, error) {
	logger.InfoLogger.Infof("Cancelling booking %s", bookingID)

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin cancel transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	booking, err := scanBooking(tx.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrBookingNotFound
		}
		return nil, false, fmt.Errorf("failed to lock booking %s: %w", bookingID, err)
	}

	if booking.Status == shared_models.BookingStatusCancelled {
		logger.InfoLogger.Infof("Booking %s already cancelled, treating as no-op", bookingID)
		return booking, false, tx.Commit(ctx)
	}

	booking.Status = shared_models.BookingStatusCancelled
	booking.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		bookingID, booking.Status, booking.UpdatedAt,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", bookingID, err)
		return nil, false, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s cancelled", bookingID)
	return booking, true, nil
}

// OptOutAttendee removes a non-organizer attendee from the booking. The
// booking row is locked so a concurrent cancel serializes with the opt-out.
func OptOutAttendee(ctx context.Context, db *pgxpool.Pool, bookingID, userID uuid.UUID) (*Booking, error) {
	logger.InfoLogger.Infof("User %s opting out of booking %s", userID, bookingID)

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin opt-out transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	booking, err := scanBooking(tx.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to lock booking %s: %w", bookingID, err)
	}

	if booking.Status == shared_models.BookingStatusCancelled {
		return nil, ErrBookingAlreadyCancelled
	}
	if booking.OrganizerID == userID {
		return nil, ErrOrganizerCannotOptOut
	}
	if !booking.IsAttendee(userID) {
		return nil, ErrNotAnAttendee
	}

	remaining := make([]uuid.UUID, 0, len(booking.Attendees)-1)
	for _, a := range booking.Attendees {
		if a != userID {
			remaining = append(remaining, a)
		}
	}
	booking.Attendees = remaining
	booking.UpdatedAt = time.Now().UTC()

	if _, err := tx.Exec(ctx,
		`UPDATE bookings SET attendees = $2, updated_at = $3 WHERE id = $1`,
		bookingID, booking.Attendees, booking.UpdatedAt,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to remove attendee %s from booking %s: %v", userID, bookingID, err)
		return nil, fmt.Errorf("failed to opt out: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit opt-out: %w", err)
	}

	logger.InfoLogger.Infof("User %s removed from booking %s, %d attendees remain", userID, bookingID, len(booking.Attendees))
	return booking, nil
}

// UpdateBookingDetails changes purpose and/or notes only. Interval and room
// changes must go through RescheduleBooking so the conflict check runs.
func UpdateBookingDetails(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, purpose, notes string) (*Booking, error) {
	query := `
		UPDATE bookings
		SET purpose = $2, notes = $3, updated_at = $4
		WHERE id = $1 AND status = $5
		RETURNING ` + bookingColumns

	booking, err := scanBooking(db.QueryRow(ctx, query,
		bookingID, purpose, notes, time.Now().UTC(), shared_models.BookingStatusConfirmed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or cancelled; disambiguate for the caller.
			if existing, getErr := GetBookingByID(ctx, db, bookingID); getErr == nil &&
				existing.Status == shared_models.BookingStatusCancelled {
				return nil, ErrBookingAlreadyCancelled
			}
			return nil, ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to update booking %s details: %v", bookingID, err)
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s details updated", bookingID)
	return booking, nil
}

// DeleteBooking removes the booking outright. Unlike cancellation this is a
// hard delete with no notification obligations.
func DeleteBooking(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to delete booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	logger.InfoLogger.Infof("Booking %s deleted", bookingID)
	return nil
}

// GetBookingsForUser retrieves bookings where the user is the organizer or an
// attendee, newest first, with pagination and an optional status filter.
func GetBookingsForUser(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	logger.InfoLogger.Infof("Fetching bookings for user %s with status filter: %q", userID, status)

	offset := (page - 1) * limit

	baseWhere := ` WHERE (organizer_id = $1 OR attendees @> ARRAY[$1]::uuid[])`
	args := []interface{}{userID}
	if status != "" {
		baseWhere += ` AND status = $2`
		args = append(args, status)
	}

	var totalCount int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+baseWhere, args...).Scan(&totalCount); err != nil {
		logger.ErrorLogger.Errorf("Failed to count bookings for user %s: %v", userID, err)
		return nil, 0, fmt.Errorf("failed to get booking count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY start_time DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, baseWhere, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for user %s: %v", userID, err)
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error during booking iteration: %w", err)
	}

	logger.InfoLogger.Infof("Fetched %d bookings for user %s (total: %d)", len(bookings), userID, totalCount)
	return bookings, totalCount, nil
}

// GetDueReminders returns confirmed bookings starting within (from, until]
// that have not had a reminder emitted yet.
func GetDueReminders(ctx context.Context, db *pgxpool.Pool, from, until time.Time) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1
		  AND reminder_sent = FALSE
		  AND start_time > $2
		  AND start_time <= $3
		ORDER BY start_time ASC`

	rows, err := db.Query(ctx, query, shared_models.BookingStatusConfirmed, from, until)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query due reminders: %v", err)
		return nil, fmt.Errorf("failed to fetch due reminders: %w", err)
	}
	defer rows.Close()

	var due []Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due booking: %w", err)
		}
		due = append(due, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during reminder iteration: %w", err)
	}
	return due, nil
}

// MarkReminderSent flips the reminder marker. The conditional WHERE makes the
// flip atomic: when schedulers race, only one sees true and emits jobs. The
// status guard keeps a booking cancelled after the due scan from being claimed.
func MarkReminderSent(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (bool, error) {
	cmdTag, err := db.Exec(ctx,
		`UPDATE bookings SET reminder_sent = TRUE, updated_at = $2 WHERE id = $1 AND reminder_sent = FALSE AND status = $3`,
		bookingID, time.Now().UTC(), shared_models.BookingStatusConfirmed)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark reminder sent for booking %s: %v", bookingID, err)
		return false, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

package audit_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joy095/boardroom/logger"
)

// AuditEntry records who did what to a booking, and when. Admin-initiated
// cancellations and deletions must always land here.
type AuditEntry struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	Action    string    `json:"action"`
	AsAdmin   bool      `json:"as_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordLifecycleEvent appends an audit row for a booking transition. Audit
// failures are logged but never fail the triggering operation.
func RecordLifecycleEvent(ctx context.Context, db *pgxpool.Pool, bookingID, actorID uuid.UUID, action string, asAdmin bool) error {
	entry := AuditEntry{
		ID:        uuid.New(),
		BookingID: bookingID,
		ActorID:   actorID,
		Action:    action,
		AsAdmin:   asAdmin,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO booking_audit_log (id, booking_id, actor_id, action, as_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := db.Exec(ctx, query,
		entry.ID, entry.BookingID, entry.ActorID, entry.Action, entry.AsAdmin, entry.CreatedAt,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to record audit entry for booking %s (%s): %v", bookingID, action, err)
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	logger.InfoLogger.Infof("Audit: booking %s %s by %s (admin=%t)", bookingID, action, actorID, asAdmin)
	return nil
}

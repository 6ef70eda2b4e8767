package shared_models

// Booking statuses. A booking is confirmed at creation or rejected outright;
// there is no pending state. Cancellation is terminal.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Audit actions recorded for lifecycle transitions.
const (
	AuditActionCreated   = "created"
	AuditActionUpdated   = "updated"
	AuditActionOptOut    = "opt_out"
	AuditActionCancelled = "cancelled"
	AuditActionDeleted   = "deleted"
)

// ExternalInvitee is a free-form guest invited by email. External invitees are
// notified directly and take no part in conflict logic.
type ExternalInvitee struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
}

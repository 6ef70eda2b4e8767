package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joy095/boardroom/models/booking_models"
)

// Kind identifies what a notification job is about. Kinds double as AMQP
// routing-key suffixes ("booking.<kind>").
type Kind string

const (
	KindCreated      Kind = "created"
	KindCancelled    Kind = "cancelled"
	KindReminder     Kind = "reminder"
	KindOptOutNotice Kind = "opt_out_notice"
)

// Event is a booking lifecycle transition to fan out. OptedOut is set only
// for opt-out notices.
type Event struct {
	Kind     Kind
	Booking  *booking_models.Booking
	OptedOut uuid.UUID
}

// Job is one per-recipient notification. Jobs are ephemeral: they are handed
// to the delivery side immediately and never persisted here.
type Job struct {
	Recipient uuid.UUID  `json:"recipient"`
	BookingID uuid.UUID  `json:"booking_id"`
	Kind      Kind       `json:"kind"`
	Payload   JobPayload `json:"payload"`
}

// JobPayload carries enough booking context for the delivery collaborator to
// render a message without a read back.
type JobPayload struct {
	RoomID    uuid.UUID  `json:"room_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Purpose   string     `json:"purpose"`
	OptedOut  *uuid.UUID `json:"opted_out,omitempty"`
}

// Notifier is what the lifecycle side sees: fire-and-forget event dispatch.
// Implementations must never block the caller on delivery.
type Notifier interface {
	Dispatch(ctx context.Context, event Event)
}

// FanOut translates one lifecycle event into per-recipient jobs. Pure: no
// delivery, no retries, no side effects.
//
// Recipients by kind: created/cancelled/reminder go to every current attendee
// (the organizer is always an attendee); an opt-out notice goes to the
// organizer only. External invitees are not in the job list, they are emailed
// directly by the dispatcher.
func FanOut(event Event) []Job {
	if event.Booking == nil {
		return nil
	}
	booking := event.Booking

	payload := JobPayload{
		RoomID:    booking.RoomID,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Purpose:   booking.Purpose,
	}

	var recipients []uuid.UUID
	switch event.Kind {
	case KindOptOutNotice:
		optedOut := event.OptedOut
		payload.OptedOut = &optedOut
		recipients = []uuid.UUID{booking.OrganizerID}
	default:
		recipients = booking.Attendees
	}

	jobs := make([]Job, 0, len(recipients))
	for _, recipient := range recipients {
		jobs = append(jobs, Job{
			Recipient: recipient,
			BookingID: booking.ID,
			Kind:      event.Kind,
			Payload:   payload,
		})
	}
	return jobs
}

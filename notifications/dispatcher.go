package notifications

import (
	"context"
	"time"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/utils/businesstime"
	"github.com/joy095/boardroom/utils/mail"
)

// Dispatcher fans lifecycle events out to the job queue and emails external
// invitees. Delivery is best effort per recipient: one failed recipient never
// blocks the others, and no failure here ever propagates back to the
// lifecycle operation that emitted the event.
type Dispatcher struct {
	Publisher *Publisher
	Times     *businesstime.Resolver
}

// NewDispatcher creates a Dispatcher. A nil publisher is tolerated so the
// service can run without a broker in development; jobs are then logged and
// dropped.
func NewDispatcher(publisher *Publisher, times *businesstime.Resolver) *Dispatcher {
	return &Dispatcher{Publisher: publisher, Times: times}
}

// Dispatch hands the event off on a goroutine and returns immediately. The
// lifecycle operation has already committed; it must not wait on delivery.
func (d *Dispatcher) Dispatch(_ context.Context, event Event) {
	go d.deliver(event)
}

func (d *Dispatcher) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if event.Booking == nil {
		logger.WarnLogger.Warnf("Dropping %s event with no booking attached", event.Kind)
		return
	}

	jobs := FanOut(event)
	logger.InfoLogger.Infof("Fanning out %s event for booking %s to %d recipients", event.Kind, event.Booking.ID, len(jobs))

	for _, job := range jobs {
		if d.Publisher == nil {
			logger.DebugLogger.Debugf("No publisher configured, dropping %s job for %s", job.Kind, job.Recipient)
			continue
		}
		if err := d.Publisher.PublishJSON(ctx, "booking."+string(job.Kind), job); err != nil {
			logger.ErrorLogger.Errorf("Failed to publish %s job for recipient %s (booking %s): %v",
				job.Kind, job.Recipient, job.BookingID, err)
			continue
		}
	}

	// External invitees are not on the internal job queue; they get the same
	// event data by direct email.
	if event.Kind != KindCreated && event.Kind != KindCancelled {
		return
	}
	for _, invitee := range event.Booking.ExternalInvitees {
		data := mail.BookingEmailData{
			DisplayName: invitee.DisplayName,
			Purpose:     event.Booking.Purpose,
			StartTime:   d.formatLocal(event.Booking.StartTime),
			EndTime:     d.formatLocal(event.Booking.EndTime),
			Year:        time.Now().Year(),
		}

		var err error
		if event.Kind == KindCreated {
			err = mail.SendBookingCreatedEmail(invitee.Email, data)
		} else {
			err = mail.SendBookingCancelledEmail(invitee.Email, data)
		}
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to email external invitee %s for booking %s: %v",
				invitee.Email, event.Booking.ID, err)
		}
	}
}

func (d *Dispatcher) formatLocal(t time.Time) string {
	if d.Times != nil {
		t = d.Times.ToBusinessLocal(t)
	}
	return t.Format("Mon, 02 Jan 2006 15:04")
}

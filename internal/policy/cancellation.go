package policy

import (
	"time"

	"voyara/pkg/model"
)

// Decision explains a cancellation check. Allowed is the verdict; the
// deadline is the last instant at which cancellation is still permitted
// (start minus the kind's lead time), populated only when the booking is
// in a cancellable status.
type Decision struct {
	Allowed  bool
	Deadline time.Time
	LeadTime time.Duration
}

// CanCancel reports whether a booking may be cancelled at the given
// instant. Only pending and confirmed bookings are cancellable, and only
// while now is strictly before start minus the kind's minimum lead time.
// The clock is passed in so the check stays deterministic under test.
func CanCancel(booking *model.Booking, now time.Time) bool {
	return Evaluate(booking, now).Allowed
}

// Evaluate is CanCancel with the deadline exposed, for error messages
// that tell the caller when the window closed.
func Evaluate(booking *model.Booking, now time.Time) Decision {
	if !booking.Status.Active() {
		return Decision{}
	}

	profile := booking.ResourceKind.Profile()
	deadline := booking.Window.Start.Add(-profile.CancelLeadTime)

	return Decision{
		Allowed:  now.Before(deadline),
		Deadline: deadline,
		LeadTime: profile.CancelLeadTime,
	}
}

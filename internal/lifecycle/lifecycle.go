package lifecycle

import (
	"voyara/pkg/model"
)

// legalTransitions is the full transition table. Anything absent is
// rejected. Cancelled and completed are terminal; nothing leaves them.
var legalTransitions = map[model.BookingStatus][]model.BookingStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled},
}

// privilegedTargets are transitions only an operator or admin may apply.
// Confirmation and completion belong to the resource side of the
// marketplace, not to the booking owner.
var privilegedTargets = map[model.BookingStatus]bool{
	model.StatusConfirmed: true,
	model.StatusCompleted: true,
}

// CanTransition reports whether the status change is in the table.
func CanTransition(from, to model.BookingStatus) bool {
	for _, target := range legalTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// RequiresOperator reports whether only a privileged actor may move a
// booking into the target status.
func RequiresOperator(to model.BookingStatus) bool {
	return privilegedTargets[to]
}

// Terminal reports whether a status admits no further transitions.
func Terminal(status model.BookingStatus) bool {
	return len(legalTransitions[status]) == 0 && status.Valid()
}

// Authorized reports whether the actor may request the given transition
// on the booking. Privileged targets need an operator who owns the
// resource, or an admin. Cancellation is open to the booking owner as
// well as privileged actors.
func Authorized(actor model.Actor, booking *model.Booking, to model.BookingStatus) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	if RequiresOperator(to) {
		return actor.Role == model.RoleOperator && actor.Owns(booking.ResourceID)
	}
	if to == model.StatusCancelled {
		if booking.RequesterID != "" && booking.RequesterID == actor.UserID {
			return true
		}
		return actor.Role == model.RoleOperator && actor.Owns(booking.ResourceID)
	}
	return false
}

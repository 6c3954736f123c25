package booking

import "github.com/townbook-za/townbook/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending     Status = "pending"
	StatusConfirmed   Status = "confirmed"
	StatusCancelled   Status = "cancelled"
	StatusCompleted   Status = "completed"
	StatusNoShow      Status = "no_show"
	StatusRescheduled Status = "rescheduled"
)

// transitions is the single source of truth for booking state changes.
// pending bookings await confirmation (usually payment); everything past
// confirmed is terminal except the confirmed state itself.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Blocking statuses hold a time slot; terminal ones release it.
func Blocks(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

func assertTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanConfirm(current Status) error  { return assertTransition(current, StatusConfirmed) }
func CanCancel(current Status) error   { return assertTransition(current, StatusCancelled) }
func CanComplete(current Status) error { return assertTransition(current, StatusCompleted) }
func CanNoShow(current Status) error   { return assertTransition(current, StatusNoShow) }
func CanReschedule(current Status) error {
	return assertTransition(current, StatusRescheduled)
}

func InitialStatus() Status {
	return StatusPending
}

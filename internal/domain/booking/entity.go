package booking

import (
	"time"

	"github.com/townbook-za/townbook/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(bk *models.Booking, now time.Time) error {
	if err := CanConfirm(Status(bk.Status)); err != nil {
		return err
	}

	bk.Status = string(StatusConfirmed)
	bk.ConfirmedAt = &now
	return nil
}

func Cancel(bk *models.Booking, now time.Time) error {
	if err := CanCancel(Status(bk.Status)); err != nil {
		return err
	}

	bk.Status = string(StatusCancelled)
	bk.CancelledAt = &now
	return nil
}

func Complete(bk *models.Booking, now time.Time) error {
	if err := CanComplete(Status(bk.Status)); err != nil {
		return err
	}

	bk.Status = string(StatusCompleted)
	bk.CompletedAt = &now
	return nil
}

func NoShow(bk *models.Booking) error {
	if err := CanNoShow(Status(bk.Status)); err != nil {
		return err
	}

	bk.Status = string(StatusNoShow)
	return nil
}

// MarkRescheduled closes the old booking and points it at its replacement.
func MarkRescheduled(bk *models.Booking, replacementID uint) error {
	if err := CanReschedule(Status(bk.Status)); err != nil {
		return err
	}

	bk.Status = string(StatusRescheduled)
	bk.RescheduledTo = &replacementID
	return nil
}

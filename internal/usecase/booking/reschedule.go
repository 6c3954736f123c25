package booking

import (
	"context"
	"time"

	"github.com/townbook-za/townbook/internal/audit"
	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/timezone"
)

type RescheduleBookingInput struct {
	BusinessID uint
	ActorID    *uint
	BookingID  uint

	Date string
	Time string
}

// RescheduleBooking closes a confirmed booking and creates its replacement
// at the new time. The replacement starts out confirmed: the customer
// already paid or was approved for the original slot.
type RescheduleBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRescheduleBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *RescheduleBooking {
	return &RescheduleBooking{
		repo:  repo,
		audit: audit,
	}
}

func (uc *RescheduleBooking) Execute(
	ctx context.Context,
	in RescheduleBookingInput,
) (*models.Booking, error) {

	biz, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	old, err := uc.repo.GetBookingForBusiness(ctx, in.BookingID, in.BusinessID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if err := domain.CanReschedule(domain.Status(old.Status)); err != nil {
		return nil, err
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(biz.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	duration := old.EndTime.Sub(old.StartTime)
	end := start.Add(duration)

	ok, err := uc.repo.IsWithinWorkingHours(ctx, in.BusinessID, start, end)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	if err := uc.repo.AssertNoTimeConflict(ctx, in.BusinessID, start, end); err != nil {
		return nil, err
	}

	now := timezone.NowIn(biz.Timezone)

	replacement := &models.Booking{
		BusinessID:  old.BusinessID,
		ServiceID:   old.ServiceID,
		CustomerID:  old.CustomerID,
		UserID:      old.UserID,
		StartTime:   start,
		EndTime:     end,
		Status:      string(domain.StatusConfirmed),
		Notes:       old.Notes,
		ConfirmedAt: &now,
	}

	if err := uc.repo.CreateBooking(ctx, replacement); err != nil {
		return nil, err
	}

	if err := domain.MarkRescheduled(old, replacement.ID); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, old); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     in.ActorID,
		Action:     "booking_rescheduled",
		Entity:     "booking",
		EntityID:   &old.ID,
		Metadata: map[string]any{
			"replacement_id": replacement.ID,
		},
	})

	return replacement, nil
}

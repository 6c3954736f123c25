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

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	BusinessID uint

	// Set when a signed-in customer booked; guests leave it nil.
	UserID *uint

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	ServiceID uint

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	biz, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	if biz.Status != "active" {
		return nil, httperr.ErrBusiness("business_not_active")
	}

	// Date/time are interpreted in the business timezone.
	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(biz.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	minAdvance := biz.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}

	now := timezone.NowIn(biz.Timezone)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	svc, err := uc.repo.GetService(ctx, in.BusinessID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	if !svc.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	end := start.Add(time.Duration(svc.DurationMin) * time.Minute)

	ok, err := uc.repo.IsWithinWorkingHours(ctx, in.BusinessID, start, end)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	customer, err := uc.repo.GetOrCreateCustomer(
		ctx,
		in.BusinessID,
		in.UserID,
		in.CustomerName,
		in.CustomerPhone,
		in.CustomerEmail,
	)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.AssertNoTimeConflict(
		ctx,
		in.BusinessID,
		start,
		end,
	); err != nil {
		return nil, err
	}

	bk := &models.Booking{
		BusinessID: in.BusinessID,
		ServiceID:  svc.ID,
		CustomerID: customer.ID,
		UserID:     in.UserID,
		StartTime:  start,
		EndTime:    end,
		Status:     string(domain.InitialStatus()),
		Notes:      in.Notes,
	}

	if err := uc.repo.CreateBooking(ctx, bk); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     in.UserID,
		Action:     "booking_created",
		Entity:     "booking",
		EntityID:   &bk.ID,
	})

	return bk, nil
}

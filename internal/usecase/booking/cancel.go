package booking

import (
	"context"

	"github.com/townbook-za/townbook/internal/audit"
	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/timezone"
)

type CancelBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CancelBooking {
	return &CancelBooking{
		repo:  repo,
		audit: audit,
	}
}

func (uc *CancelBooking) Execute(
	ctx context.Context,
	businessID uint,
	actorID *uint,
	bookingID uint,
) (*models.Booking, error) {

	biz, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	bk, err := uc.repo.GetBookingForBusiness(ctx, bookingID, businessID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	now := timezone.NowIn(biz.Timezone)
	if err := domain.Cancel(bk, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, bk); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     actorID,
		Action:     "booking_cancelled",
		Entity:     "booking",
		EntityID:   &bk.ID,
	})

	return bk, nil
}

// ExecuteForUser cancels a booking on behalf of the customer who made it.
func (uc *CancelBooking) ExecuteForUser(
	ctx context.Context,
	userID uint,
	bookingID uint,
) (*models.Booking, error) {

	bk, err := uc.repo.GetBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	biz, err := uc.repo.GetBusinessByID(ctx, bk.BusinessID)
	if err != nil {
		return nil, err
	}

	now := timezone.NowIn(biz.Timezone)
	if err := domain.Cancel(bk, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, bk); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: bk.BusinessID,
		UserID:     &userID,
		Action:     "booking_cancelled_by_customer",
		Entity:     "booking",
		EntityID:   &bk.ID,
	})

	return bk, nil
}

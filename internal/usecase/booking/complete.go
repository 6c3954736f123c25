package booking

import (
	"context"

	"github.com/townbook-za/townbook/internal/audit"
	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/timezone"
)

type CompleteBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CompleteBooking {
	return &CompleteBooking{
		repo:  repo,
		audit: audit,
	}
}

func (uc *CompleteBooking) Execute(
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
	if err := domain.Complete(bk, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, bk); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     actorID,
		Action:     "booking_completed",
		Entity:     "booking",
		EntityID:   &bk.ID,
	})

	return bk, nil
}

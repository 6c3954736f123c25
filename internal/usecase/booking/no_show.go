package booking

import (
	"context"

	"github.com/townbook-za/townbook/internal/audit"
	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/models"
)

type MarkNoShow struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewMarkNoShow(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *MarkNoShow {
	return &MarkNoShow{
		repo:  repo,
		audit: audit,
	}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	businessID uint,
	actorID *uint,
	bookingID uint,
) (*models.Booking, error) {

	bk, err := uc.repo.GetBookingForBusiness(ctx, bookingID, businessID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if err := domain.NoShow(bk); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, bk); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     actorID,
		Action:     "booking_no_show",
		Entity:     "booking",
		EntityID:   &bk.ID,
	})

	return bk, nil
}

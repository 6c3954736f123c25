package booking

import (
	"context"
	"time"

	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/timezone"
)

type ListBookingsByMonth struct {
	repo domain.Repository
}

func NewListBookingsByMonth(repo domain.Repository) *ListBookingsByMonth {
	return &ListBookingsByMonth{repo: repo}
}

func (uc *ListBookingsByMonth) Execute(
	ctx context.Context,
	businessID uint,
	year int,
	month int,
) ([]models.Booking, error) {

	if year < 2000 || year > 2100 {
		return nil, httperr.ErrBusiness("invalid_year")
	}
	if month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	biz, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(biz.Timezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	return uc.repo.ListBookingsForPeriod(ctx, businessID, start, end)
}

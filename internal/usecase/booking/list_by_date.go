package booking

import (
	"context"
	"time"

	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/timezone"
)

type ListBookingsByDate struct {
	repo domain.Repository
}

func NewListBookingsByDate(repo domain.Repository) *ListBookingsByDate {
	return &ListBookingsByDate{repo: repo}
}

func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	businessID uint,
	dateStr string,
) ([]models.Booking, error) {

	biz, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation(
		"2006-01-02",
		dateStr,
		timezone.Location(biz.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(24 * time.Hour)

	return uc.repo.ListBookingsForPeriod(ctx, businessID, start, end)
}

package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/models"
)

type fakeRepo struct {
	business *models.Business
	service  *models.Service
	hours    map[int]*models.WorkingHours
	bookings []models.Booking

	created      []*models.Booking
	outsideHours bool
	conflictErr  error
}

func (f *fakeRepo) GetBusinessByID(_ context.Context, id uint) (*models.Business, error) {
	if f.business == nil || f.business.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.business, nil
}

func (f *fakeRepo) GetService(_ context.Context, businessID, serviceID uint) (*models.Service, error) {
	if f.service == nil || f.service.ID != serviceID || f.service.BusinessID != businessID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.service, nil
}

func (f *fakeRepo) GetOrCreateCustomer(_ context.Context, businessID uint, userID *uint, name, phone, email string) (*models.Customer, error) {
	return &models.Customer{ID: 1, BusinessID: businessID, UserID: userID, Name: name, Phone: phone, Email: email}, nil
}

func (f *fakeRepo) CreateBooking(_ context.Context, bk *models.Booking) error {
	bk.ID = uint(len(f.created) + 1)
	f.created = append(f.created, bk)
	return nil
}

func (f *fakeRepo) AssertNoTimeConflict(_ context.Context, _ uint, start, end time.Time) error {
	return f.conflictErr
}

func (f *fakeRepo) GetBookingForBusiness(_ context.Context, bookingID, businessID uint) (*models.Booking, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetBookingForUser(_ context.Context, bookingID, userID uint) (*models.Booking, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateBooking(_ context.Context, _ *models.Booking) error {
	return nil
}

func (f *fakeRepo) GetWorkingHours(_ context.Context, _ uint, weekday int) (*models.WorkingHours, error) {
	wh, ok := f.hours[weekday]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return wh, nil
}

func (f *fakeRepo) ListBookingsForDay(_ context.Context, _ uint, _, _ time.Time) ([]models.Booking, error) {
	return f.bookings, nil
}

func (f *fakeRepo) IsWithinWorkingHours(_ context.Context, _ uint, _, _ time.Time) (bool, error) {
	return !f.outsideHours, nil
}

func (f *fakeRepo) ListBookingsForPeriod(_ context.Context, _ uint, _, _ time.Time) ([]models.Booking, error) {
	return f.bookings, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

func availabilityFixture() *fakeRepo {
	return &fakeRepo{
		business: &models.Business{ID: 1, Status: "active", Timezone: "UTC"},
		service:  &models.Service{ID: 2, BusinessID: 1, DurationMin: 60, Active: true},
		hours: map[int]*models.WorkingHours{
			// Monday 09:00-13:00, break 11:00-12:00
			1: {
				BusinessID: 1,
				Weekday:    1,
				Active:     true,
				StartTime:  "09:00",
				EndTime:    "13:00",
				BreakStart: "11:00",
				BreakEnd:   "12:00",
			},
		},
	}
}

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestGetAvailability_BreakExcluded(t *testing.T) {
	repo := availabilityFixture()
	uc := NewGetAvailability(repo)

	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BusinessID: 1,
		ServiceID:  2,
		Date:       monday,
	})
	require.NoError(t, err)

	// 09-10, 10-11, 12-13. The 11-12 break window is skipped.
	require.Len(t, slots, 3)
	assert.Equal(t, "09:00", slots[0].Start)
	assert.Equal(t, "10:00", slots[1].Start)
	assert.Equal(t, "12:00", slots[2].Start)
}

func TestGetAvailability_BookedSlotExcluded(t *testing.T) {
	repo := availabilityFixture()
	repo.bookings = []models.Booking{
		{
			StartTime: monday.Add(10 * time.Hour),
			EndTime:   monday.Add(11 * time.Hour),
		},
	}

	uc := NewGetAvailability(repo)
	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BusinessID: 1,
		ServiceID:  2,
		Date:       monday,
	})
	require.NoError(t, err)

	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Start)
	assert.Equal(t, "12:00", slots[1].Start)
}

func TestGetAvailability_InactiveDayHasNoSlots(t *testing.T) {
	repo := availabilityFixture()
	repo.hours[1].Active = false

	uc := NewGetAvailability(repo)
	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BusinessID: 1,
		ServiceID:  2,
		Date:       monday,
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailability_UnknownServiceFails(t *testing.T) {
	repo := availabilityFixture()
	uc := NewGetAvailability(repo)

	_, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BusinessID: 1,
		ServiceID:  99,
		Date:       monday,
	})
	assert.Error(t, err)
}

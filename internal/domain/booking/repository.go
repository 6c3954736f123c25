package booking

import (
	"context"
	"time"

	"github.com/townbook-za/townbook/internal/models"
)

type Repository interface {
	// -------- Business --------
	GetBusinessByID(
		ctx context.Context,
		id uint,
	) (*models.Business, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		businessID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Customer --------
	GetOrCreateCustomer(
		ctx context.Context,
		businessID uint,
		userID *uint,
		name string,
		phone string,
		email string,
	) (*models.Customer, error)

	// -------- Booking (create / conflict) --------
	CreateBooking(
		ctx context.Context,
		bk *models.Booking,
	) error

	AssertNoTimeConflict(
		ctx context.Context,
		businessID uint,
		start time.Time,
		end time.Time,
	) error

	// -------- Booking (state change) --------
	GetBookingForBusiness(
		ctx context.Context,
		bookingID uint,
		businessID uint,
	) (*models.Booking, error)

	GetBookingForUser(
		ctx context.Context,
		bookingID uint,
		userID uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		bk *models.Booking,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		businessID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListBookingsForDay(
		ctx context.Context,
		businessID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)

	IsWithinWorkingHours(
		ctx context.Context,
		businessID uint,
		start time.Time,
		end time.Time,
	) (bool, error)

	ListBookingsForPeriod(
		ctx context.Context,
		businessID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)
}

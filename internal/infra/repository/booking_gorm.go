package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Business
// --------------------------------------------------

func (r *BookingGormRepository) GetBusinessByID(
	ctx context.Context,
	id uint,
) (*models.Business, error) {

	var biz models.Business
	if err := r.db.WithContext(ctx).First(&biz, id).Error; err != nil {
		return nil, err
	}
	return &biz, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	businessID uint,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (r *BookingGormRepository) GetOrCreateCustomer(
	ctx context.Context,
	businessID uint,
	userID *uint,
	name string,
	phone string,
	email string,
) (*models.Customer, error) {

	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND phone = ?", businessID, phone).
		First(&customer).Error

	if err == nil {
		// Link the contact record to the account on first signed-in booking.
		if userID != nil && customer.UserID == nil {
			customer.UserID = userID
			if err := r.db.WithContext(ctx).Save(&customer).Error; err != nil {
				return nil, err
			}
		}
		return &customer, nil
	}

	customer = models.Customer{
		BusinessID: businessID,
		UserID:     userID,
		Name:       name,
		Phone:      phone,
		Email:      email,
	}

	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	bk *models.Booking,
) error {
	return r.db.WithContext(ctx).Create(bk).Error
}

func (r *BookingGormRepository) AssertNoTimeConflict(
	ctx context.Context,
	businessID uint,
	start time.Time,
	end time.Time,
) error {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"business_id = ? AND status IN ('pending', 'confirmed') AND start_time < ? AND end_time > ?",
			businessID,
			end,
			start,
		).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return httperr.ErrBusiness("time_conflict")
	}

	return nil
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) GetBookingForBusiness(
	ctx context.Context,
	bookingID uint,
	businessID uint,
) (*models.Booking, error) {

	var bk models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", bookingID, businessID).
		First(&bk).Error; err != nil {
		return nil, err
	}

	return &bk, nil
}

func (r *BookingGormRepository) GetBookingForUser(
	ctx context.Context,
	bookingID uint,
	userID uint,
) (*models.Booking, error) {

	var bk models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", bookingID, userID).
		First(&bk).Error; err != nil {
		return nil, err
	}

	return &bk, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	bk *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(bk).Error
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *BookingGormRepository) GetWorkingHours(
	ctx context.Context,
	businessID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND weekday = ?", businessID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}

	return &wh, nil
}

func (r *BookingGormRepository) ListBookingsForDay(
	ctx context.Context,
	businessID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bks []models.Booking
	if err := r.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where(
			"business_id = ? AND status IN ('pending', 'confirmed') AND start_time >= ? AND start_time < ?",
			businessID, start, end,
		).
		Order("start_time ASC").
		Find(&bks).Error; err != nil {
		return nil, err
	}

	return bks, nil
}

func (r *BookingGormRepository) IsWithinWorkingHours(
	ctx context.Context,
	businessID uint,
	start time.Time,
	end time.Time,
) (bool, error) {

	weekday := int(start.Weekday())
	loc := start.Location()

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND weekday = ?", businessID, weekday).
		First(&wh).Error; err != nil {
		return false, nil
	}

	if !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return false, nil
	}

	parseHM := func(hm string) time.Time {
		t, _ := time.Parse("15:04", hm)
		return time.Date(
			start.Year(), start.Month(), start.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		)
	}

	workStart := parseHM(wh.StartTime)
	workEnd := parseHM(wh.EndTime)

	if start.Before(workStart) || end.After(workEnd) {
		return false, nil
	}

	if wh.BreakStart != "" && wh.BreakEnd != "" {
		breakStart := parseHM(wh.BreakStart)
		breakEnd := parseHM(wh.BreakEnd)
		if start.Before(breakEnd) && end.After(breakStart) {
			return false, nil
		}
	}

	return true, nil
}

func (r *BookingGormRepository) ListBookingsForPeriod(
	ctx context.Context,
	businessID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bks []models.Booking

	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		Where(
			"business_id = ? AND start_time >= ? AND start_time < ?",
			businessID,
			start,
			end,
		).
		Order("start_time ASC").
		Find(&bks).Error

	if err != nil {
		return nil, err
	}

	return bks, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)

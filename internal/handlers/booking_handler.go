package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/cache"
	"github.com/townbook-za/townbook/internal/dto"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/middleware"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/notify"
	ucBooking "github.com/townbook-za/townbook/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db *gorm.DB

	createUC     *ucBooking.CreateBooking
	confirmUC    *ucBooking.ConfirmBooking
	cancelUC     *ucBooking.CancelBooking
	completeUC   *ucBooking.CompleteBooking
	noShowUC     *ucBooking.MarkNoShow
	rescheduleUC *ucBooking.RescheduleBooking
	listByDate   *ucBooking.ListBookingsByDate
	listByMonth  *ucBooking.ListBookingsByMonth

	availCache *cache.AvailabilityCache
	notifier   *notify.Notifier
}

func NewBookingHandler(
	db *gorm.DB,
	createUC *ucBooking.CreateBooking,
	confirmUC *ucBooking.ConfirmBooking,
	cancelUC *ucBooking.CancelBooking,
	completeUC *ucBooking.CompleteBooking,
	noShowUC *ucBooking.MarkNoShow,
	rescheduleUC *ucBooking.RescheduleBooking,
	listByDate *ucBooking.ListBookingsByDate,
	listByMonth *ucBooking.ListBookingsByMonth,
	availCache *cache.AvailabilityCache,
	notifier *notify.Notifier,
) *BookingHandler {
	return &BookingHandler{
		db:           db,
		createUC:     createUC,
		confirmUC:    confirmUC,
		cancelUC:     cancelUC,
		completeUC:   completeUC,
		noShowUC:     noShowUC,
		rescheduleUC: rescheduleUC,
		listByDate:   listByDate,
		listByMonth:  listByMonth,
		availCache:   availCache,
		notifier:     notifier,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	ServiceID     uint   `json:"service_id" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Time          string `json:"time" binding:"required"`
	Notes         string `json:"notes"`
}

type CustomerCreateBookingRequest struct {
	BusinessSlug string `json:"business_slug" binding:"required"`
	ServiceID    uint   `json:"service_id" binding:"required"`
	Date         string `json:"date" binding:"required"`
	Time         string `json:"time" binding:"required"`
	Notes        string `json:"notes"`
	Phone        string `json:"phone"`
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// ======================================================
// OWNER — CREATE (walk-in / phone bookings)
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	bk, err := h.createUC.Execute(
		c.Request.Context(),
		ucBooking.CreateBookingInput{
			BusinessID:    businessID,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			CustomerEmail: req.CustomerEmail,
			ServiceID:     req.ServiceID,
			Date:          req.Date,
			Time:          req.Time,
			Notes:         req.Notes,
		},
	)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	// Owner-entered bookings skip the pending/payment step.
	bk, err = h.confirmUC.Execute(c.Request.Context(), businessID, &userID, bk.ID)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	h.availCache.Invalidate(c.Request.Context(), businessID)

	c.JSON(http.StatusCreated, bk)
}

// ======================================================
// CUSTOMER — CREATE
// ======================================================

func (h *BookingHandler) CreateAsCustomer(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CustomerCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.Internal(c, "user_not_found", "Could not load your account.")
		return
	}

	var biz models.Business
	if err := h.db.Where("slug = ?", req.BusinessSlug).First(&biz).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	phone := req.Phone
	if phone == "" {
		phone = user.Phone
	}
	if phone == "" {
		httperr.BadRequest(c, "missing_phone", "A contact phone number is required.")
		return
	}

	bk, err := h.createUC.Execute(
		c.Request.Context(),
		ucBooking.CreateBookingInput{
			BusinessID:    biz.ID,
			UserID:        &userID,
			CustomerName:  user.Name,
			CustomerPhone: phone,
			CustomerEmail: user.Email,
			ServiceID:     req.ServiceID,
			Date:          req.Date,
			Time:          req.Time,
			Notes:         req.Notes,
		},
	)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	h.availCache.Invalidate(c.Request.Context(), biz.ID)
	h.notifier.Notify(
		c.Request.Context(),
		biz.OwnerID,
		notify.TypeBookingCreated,
		"New booking for "+bk.StartTime.Format("2006-01-02 15:04"),
	)

	c.JSON(http.StatusCreated, bk)
}

// ======================================================
// CUSTOMER — MY BOOKINGS / CANCEL
// ======================================================

func (h *BookingHandler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var bks []models.Booking
	if err := h.db.
		Preload("Service").
		Preload("Business").
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&bks).Error; err != nil {

		httperr.Internal(c, "failed_to_list_bookings", "Could not list your bookings.")
		return
	}

	c.JSON(http.StatusOK, bks)
}

func (h *BookingHandler) CancelMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid booking id.")
		return
	}

	bk, err := h.cancelUC.ExecuteForUser(c.Request.Context(), userID, uint(id))
	if err != nil {
		mapBookingError(c, err)
		return
	}

	h.availCache.Invalidate(c.Request.Context(), bk.BusinessID)

	var biz models.Business
	if err := h.db.First(&biz, bk.BusinessID).Error; err == nil {
		h.notifier.Notify(
			c.Request.Context(),
			biz.OwnerID,
			notify.TypeBookingCancelled,
			"Booking on "+bk.StartTime.Format("2006-01-02 15:04")+" was cancelled",
		)
	}

	c.JSON(http.StatusOK, bk)
}

// ======================================================
// OWNER — LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "A date is required.")
		return
	}

	bks, err := h.listByDate.Execute(c.Request.Context(), businessID, dateStr)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	out := make([]dto.BookingListDTO, 0, len(bks))
	for _, bk := range bks {
		out = append(out, dto.BookingListDTO{
			ID:           bk.ID,
			StartTime:    bk.StartTime,
			EndTime:      bk.EndTime,
			Status:       bk.Status,
			CustomerName: bk.Customer.Name,
			ServiceName:  bk.Service.Name,
		})
	}

	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	bks, err := h.listByMonth.Execute(c.Request.Context(), businessID, year, month)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":     year,
		"month":    month,
		"bookings": bks,
	})
}

// ======================================================
// OWNER — STATE CHANGES
// ======================================================

func (h *BookingHandler) bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid booking id.")
		return 0, false
	}
	return uint(id), true
}

func (h *BookingHandler) notifyCustomer(c *gin.Context, bk *models.Booking, typ, message string) {
	if bk.UserID != nil {
		h.notifier.Notify(c.Request.Context(), *bk.UserID, typ, message)
	}
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	bk, err := h.confirmUC.Execute(c.Request.Context(), businessID, &userID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	h.notifyCustomer(c, bk, notify.TypeBookingConfirmed,
		"Your booking on "+bk.StartTime.Format("2006-01-02 15:04")+" is confirmed")

	c.JSON(http.StatusOK, bk)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	bk, err := h.cancelUC.Execute(c.Request.Context(), businessID, &userID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	h.availCache.Invalidate(c.Request.Context(), businessID)
	h.notifyCustomer(c, bk, notify.TypeBookingCancelled,
		"Your booking on "+bk.StartTime.Format("2006-01-02 15:04")+" was cancelled")

	c.JSON(http.StatusOK, bk)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	bk, err := h.completeUC.Execute(c.Request.Context(), businessID, &userID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, bk)
}

func (h *BookingHandler) NoShow(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	bk, err := h.noShowUC.Execute(c.Request.Context(), businessID, &userID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, bk)
}

func (h *BookingHandler) Reschedule(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	replacement, err := h.rescheduleUC.Execute(c.Request.Context(), ucBooking.RescheduleBookingInput{
		BusinessID: businessID,
		ActorID:    &userID,
		BookingID:  id,
		Date:       req.Date,
		Time:       req.Time,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	h.availCache.Invalidate(c.Request.Context(), businessID)
	h.notifyCustomer(c, replacement, notify.TypeBookingConfirmed,
		"Your booking was moved to "+replacement.StartTime.Format("2006-01-02 15:04"))

	c.JSON(http.StatusOK, replacement)
}

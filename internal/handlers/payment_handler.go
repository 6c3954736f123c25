package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/audit"
	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/middleware"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/notify"
	"github.com/townbook-za/townbook/internal/payfast"
	"github.com/townbook-za/townbook/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type PaymentHandler struct {
	db       *gorm.DB
	client   *payfast.Client
	notifier *notify.Notifier
	audit    *audit.Dispatcher
	log      zerolog.Logger
}

func NewPaymentHandler(
	db *gorm.DB,
	client *payfast.Client,
	notifier *notify.Notifier,
	auditor *audit.Dispatcher,
	log zerolog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		db:       db,
		client:   client,
		notifier: notifier,
		audit:    auditor,
		log:      log.With().Str("handler", "payment").Logger(),
	}
}

type InitiatePaymentRequest struct {
	BookingID uint `json:"booking_id" binding:"required"`
}

// ======================================================
// INITIATE
// ======================================================

// Initiate builds the signed gateway form for a pending booking owned by
// the signed-in customer. Re-initiating reuses the open payment record so
// the merchant reference stays stable across retries.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	var bk models.Booking
	if err := h.db.
		Preload("Service").
		Preload("Business").
		Where("id = ? AND user_id = ?", req.BookingID, userID).
		First(&bk).Error; err != nil {

		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	if bk.Status != string(domain.StatusPending) {
		httperr.BadRequest(c, "booking_not_payable", "Only pending bookings can be paid.")
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.Internal(c, "user_not_found", "Could not load your account.")
		return
	}

	var payment models.Payment
	err := h.db.
		Where("booking_id = ? AND status = ?", bk.ID, "pending").
		First(&payment).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		payment = models.Payment{
			BookingID:   bk.ID,
			Amount:      bk.Service.Price,
			Status:      "pending",
			MerchantRef: uuid.NewString(),
		}
		if err := h.db.Create(&payment).Error; err != nil {
			httperr.Internal(c, "payment_create_failed", "Could not create the payment.")
			return
		}

	case err != nil:
		httperr.Internal(c, "payment_lookup_failed", "Could not look up the payment.")
		return
	}

	bookingID := int(bk.ID)

	redirect, err := h.client.BuildRedirect(payfast.PaymentRequest{
		MerchantRef:     payment.MerchantRef,
		Amount:          payment.Amount,
		ItemName:        bk.Service.Name,
		ItemDescription: bk.Business.Name + " - " + bk.StartTime.Format("2006-01-02 15:04"),
		EmailAddress:    user.Email,
		CustomInt:       [5]*int{&bookingID},
	})
	if err != nil {
		httperr.Internal(c, "payment_build_failed", "Could not build the payment form.")
		return
	}

	c.JSON(http.StatusOK, redirect)
}

// ======================================================
// GATEWAY NOTIFICATION (ITN)
// ======================================================

// Notify is the public server-to-server webhook. Signature and amount are
// verified before anything is touched; a failed notification marks the
// payment failed and leaves the booking alone.
func (h *PaymentHandler) Notify(c *gin.Context) {
	if !h.client.TrustedSource(c.ClientIP()) {
		h.log.Warn().Str("ip", c.ClientIP()).Msg("notification from untrusted source")
		httperr.Forbidden(c, "untrusted_source", "Notification rejected.")
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		httperr.BadRequest(c, "invalid_notification", "Could not parse notification.")
		return
	}

	fields := make(map[string]string, len(c.Request.PostForm))
	for name := range c.Request.PostForm {
		fields[name] = c.Request.PostForm.Get(name)
	}

	notification, err := h.client.ValidateNotification(fields)
	if err != nil {
		h.log.Warn().Err(err).Msg("rejected payment notification")
		httperr.BadRequest(c, "invalid_signature", "Notification rejected.")
		return
	}

	var payment models.Payment
	if err := h.db.
		Where("merchant_ref = ?", notification.MerchantRef).
		First(&payment).Error; err != nil {

		h.log.Warn().Str("merchant_ref", notification.MerchantRef).Msg("notification for unknown payment")
		httperr.NotFound(c, "payment_not_found", "Unknown payment reference.")
		return
	}

	// Gateways retry notifications; a settled payment is acknowledged as-is.
	if payment.Status == "completed" {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if err := notification.CheckAmount(payment.Amount); err != nil {
		h.log.Warn().
			Str("merchant_ref", notification.MerchantRef).
			Str("amount_gross", notification.AmountGross).
			Float64("expected", payment.Amount).
			Msg("notification amount mismatch")
		httperr.BadRequest(c, "amount_mismatch", "Notification rejected.")
		return
	}

	if !notification.Complete() {
		payment.Status = "failed"
		payment.GatewayRef = notification.GatewayRef
		if err := h.db.Save(&payment).Error; err != nil {
			httperr.Internal(c, "payment_update_failed", "Could not record the payment.")
			return
		}

		h.notifyBookingParties(c, payment.BookingID, notify.TypePaymentFailed,
			"A payment attempt failed")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		payment.Status = "completed"
		payment.GatewayRef = notification.GatewayRef
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		var bk models.Booking
		if err := tx.First(&bk, payment.BookingID).Error; err != nil {
			return err
		}

		// A paid booking that is still pending gets confirmed on the spot.
		if bk.Status == string(domain.StatusPending) {
			var biz models.Business
			if err := tx.First(&biz, bk.BusinessID).Error; err != nil {
				return err
			}

			if err := domain.Confirm(&bk, timezone.NowIn(biz.Timezone)); err != nil {
				return err
			}
			if err := tx.Save(&bk).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		h.log.Error().Err(err).Uint("payment_id", payment.ID).Msg("failed to settle payment")
		httperr.Internal(c, "payment_update_failed", "Could not record the payment.")
		return
	}

	h.audit.Dispatch(audit.Event{
		Action:   "payment_completed",
		Entity:   "payment",
		EntityID: &payment.ID,
	})

	h.notifyBookingParties(c, payment.BookingID, notify.TypePaymentReceived,
		"Payment received")

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// CUSTOMER — PAYMENT LOOKUP / HISTORY
// ======================================================

func (h *PaymentHandler) GetForBooking(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("bookingId"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid booking id.")
		return
	}

	var bk models.Booking
	if err := h.db.
		Where("id = ? AND user_id = ?", uint(bookingID), userID).
		First(&bk).Error; err != nil {

		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	var payment models.Payment
	if err := h.db.
		Where("booking_id = ?", bk.ID).
		Order("created_at DESC").
		First(&payment).Error; err != nil {

		httperr.NotFound(c, "payment_not_found", "No payment for this booking.")
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var payments []models.Payment
	if err := h.db.
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.user_id = ?", userID).
		Order("payments.created_at DESC").
		Find(&payments).Error; err != nil {

		httperr.Internal(c, "failed_to_list_payments", "Could not list your payments.")
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) notifyBookingParties(c *gin.Context, bookingID uint, typ, message string) {
	var bk models.Booking
	if err := h.db.First(&bk, bookingID).Error; err != nil {
		return
	}

	if bk.UserID != nil {
		h.notifier.Notify(c.Request.Context(), *bk.UserID, typ, message)
	}

	var biz models.Business
	if err := h.db.First(&biz, bk.BusinessID).Error; err == nil {
		h.notifier.Notify(c.Request.Context(), biz.OwnerID, typ, message)
	}
}

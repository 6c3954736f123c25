package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/httpresp"
	"github.com/townbook-za/townbook/internal/middleware"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/notify"
)

// AdminHandler covers platform operations: category management, user and
// business moderation, global settings and the cross-business audit trail.
type AdminHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewAdminHandler(db *gorm.DB, notifier *notify.Notifier) *AdminHandler {
	return &AdminHandler{db: db, notifier: notifier}
}

// ======================================================
// CATEGORIES
// ======================================================

type CategoryRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Slug   string `json:"slug" binding:"required,max=100"`
	Active *bool  `json:"active"`
}

func (h *AdminHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.db.Order("name ASC").Find(&categories).Error; err != nil {
		httperr.Internal(c, "failed_to_list_categories", "Could not list categories.")
		return
	}

	httpresp.List(c, categories)
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	cat := models.Category{
		Name:   strings.TrimSpace(req.Name),
		Slug:   strings.ToLower(strings.TrimSpace(req.Slug)),
		Active: true,
	}
	if req.Active != nil {
		cat.Active = *req.Active
	}

	if err := h.db.Create(&cat).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			httperr.Conflict(c, "slug_taken", "A category with that slug already exists.")
			return
		}
		httperr.Internal(c, "failed_to_create_category", "Could not create the category.")
		return
	}

	c.JSON(http.StatusCreated, cat)
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid category id.")
		return
	}

	var cat models.Category
	if err := h.db.First(&cat, uint(id)).Error; err != nil {
		httperr.NotFound(c, "category_not_found", "Category not found.")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	cat.Name = strings.TrimSpace(req.Name)
	cat.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Active != nil {
		cat.Active = *req.Active
	}

	if err := h.db.Save(&cat).Error; err != nil {
		httperr.Internal(c, "failed_to_update_category", "Could not update the category.")
		return
	}

	c.JSON(http.StatusOK, cat)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid category id.")
		return
	}

	var inUse int64
	h.db.Table("business_categories").Where("category_id = ?", uint(id)).Count(&inUse)
	if inUse > 0 {
		httperr.Conflict(c, "category_in_use", "Businesses still use this category.")
		return
	}

	if err := h.db.Delete(&models.Category{}, uint(id)).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_category", "Could not delete the category.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// USERS
// ======================================================

type UpdateUserRequest struct {
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := h.db.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if search := strings.TrimSpace(strings.ToLower(c.Query("query"))); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_users", "Could not list users.")
		return
	}

	var users []models.User
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&users).Error; err != nil {

		httperr.Internal(c, "failed_to_list_users", "Could not list users.")
		return
	}

	httpresp.Page(c, users, page, limit, total)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	adminID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid user id.")
		return
	}

	var user models.User
	if err := h.db.First(&user, uint(id)).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.Role != nil {
		switch *req.Role {
		case "user", "business", "staff", "admin":
			user.Role = *req.Role
		default:
			httperr.BadRequest(c, "invalid_role", "Unknown role.")
			return
		}
	}

	if req.Active != nil {
		if user.ID == adminID && !*req.Active {
			httperr.BadRequest(c, "self_deactivation", "You cannot deactivate your own account.")
			return
		}
		user.Active = *req.Active
	}

	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_user", "Could not update the user.")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ======================================================
// BUSINESS MODERATION
// ======================================================

func (h *AdminHandler) ListBusinesses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := h.db.Model(&models.Business{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_businesses", "Could not list businesses.")
		return
	}

	var businesses []models.Business
	if err := q.
		Preload("Categories").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&businesses).Error; err != nil {

		httperr.Internal(c, "failed_to_list_businesses", "Could not list businesses.")
		return
	}

	httpresp.Page(c, businesses, page, limit, total)
}

func (h *AdminHandler) setBusinessStatus(c *gin.Context, status, message string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid business id.")
		return
	}

	var biz models.Business
	if err := h.db.First(&biz, uint(id)).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	biz.Status = status
	if err := h.db.Save(&biz).Error; err != nil {
		httperr.Internal(c, "failed_to_update_business", "Could not update the business.")
		return
	}

	h.notifier.Notify(c.Request.Context(), biz.OwnerID, "business_"+status, message)

	c.JSON(http.StatusOK, biz)
}

func (h *AdminHandler) ApproveBusiness(c *gin.Context) {
	h.setBusinessStatus(c, "active", "Your business listing has been approved.")
}

func (h *AdminHandler) SuspendBusiness(c *gin.Context) {
	h.setBusinessStatus(c, "suspended", "Your business listing has been suspended.")
}

// ======================================================
// PAYMENTS
// ======================================================

// RefundPayment marks a settled payment refunded. The money movement
// happens on the gateway dashboard; this records the outcome.
func (h *AdminHandler) RefundPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid payment id.")
		return
	}

	var payment models.Payment
	if err := h.db.Preload("Booking").First(&payment, uint(id)).Error; err != nil {
		httperr.NotFound(c, "payment_not_found", "Payment not found.")
		return
	}

	if payment.Status != "completed" {
		httperr.BadRequest(c, "not_refundable", "Only completed payments can be refunded.")
		return
	}

	payment.Status = "refunded"
	if err := h.db.Save(&payment).Error; err != nil {
		httperr.Internal(c, "failed_to_update_payment", "Could not update the payment.")
		return
	}

	if payment.Booking.UserID != nil {
		h.notifier.Notify(c.Request.Context(), *payment.Booking.UserID,
			"payment_refunded", "Your payment was refunded.")
	}

	c.JSON(http.StatusOK, payment)
}

// ======================================================
// SETTINGS
// ======================================================

type SettingsUpdateRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	var settings []models.Setting
	if err := h.db.Order("key ASC").Find(&settings).Error; err != nil {
		httperr.Internal(c, "failed_to_get_settings", "Could not load settings.")
		return
	}

	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}

	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req SettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range req.Settings {
			var setting models.Setting
			res := tx.Where("key = ?", key).First(&setting)

			if res.Error == nil {
				setting.Value = value
				if err := tx.Save(&setting).Error; err != nil {
					return err
				}
				continue
			}

			if err := tx.Create(&models.Setting{Key: key, Value: value}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_update_settings", "Could not save settings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// AUDIT TRAIL (all businesses)
// ======================================================

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := h.db.Model(&models.AuditLog{})

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if bizID, err := strconv.ParseUint(c.Query("business_id"), 10, 64); err == nil {
		q = q.Where("business_id = ?", uint(bizID))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "Could not list audit logs.")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "failed_to_list_audit_logs", "Could not list audit logs.")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/cache"
	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/httpresp"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/notify"
	"github.com/townbook-za/townbook/internal/timezone"
	ucBooking "github.com/townbook-za/townbook/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db        *gorm.DB
	createUC  *ucBooking.CreateBooking
	availUC   *ucBooking.GetAvailability
	availCche *cache.AvailabilityCache
	notifier  *notify.Notifier
}

func NewPublicHandler(
	db *gorm.DB,
	createUC *ucBooking.CreateBooking,
	availUC *ucBooking.GetAvailability,
	availCache *cache.AvailabilityCache,
	notifier *notify.Notifier,
) *PublicHandler {
	return &PublicHandler{
		db:        db,
		createUC:  createUC,
		availUC:   availUC,
		availCche: availCache,
		notifier:  notifier,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	ServiceID     uint   `json:"service_id" binding:"required"`
	Date          string `json:"date" binding:"required"` // YYYY-MM-DD
	Time          string `json:"time" binding:"required"` // HH:mm
	Notes         string `json:"notes"`
}

////////////////////////////////////////////////////////
// DIRECTORY SEARCH
////////////////////////////////////////////////////////

func (h *PublicHandler) SearchBusinesses(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	city := strings.ToLower(strings.TrimSpace(c.Query("city")))
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := h.db.Model(&models.Business{}).
		Where("status = ?", "active")

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if city != "" {
		q = q.Where("LOWER(city) = ?", city)
	}

	if category != "" {
		q = q.
			Joins("JOIN business_categories bc ON bc.business_id = businesses.id").
			Joins("JOIN categories cat ON cat.id = bc.category_id").
			Where("cat.slug = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "search_failed", "Could not search businesses.")
		return
	}

	var businesses []models.Business
	if err := q.
		Preload("Categories").
		Order("name ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&businesses).Error; err != nil {

		httperr.Internal(c, "search_failed", "Could not search businesses.")
		return
	}

	httpresp.Page(c, businesses, page, limit, total)
}

func (h *PublicHandler) GetBusiness(c *gin.Context) {
	slug := c.Param("slug")

	var biz models.Business
	if err := h.db.
		Preload("Categories").
		Where("slug = ? AND status = ?", slug, "active").
		First(&biz).Error; err != nil {

		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	// Average rating rides along on the profile.
	var stats struct {
		Avg   float64
		Count int64
	}
	h.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("business_id = ?", biz.ID).
		Scan(&stats)

	c.JSON(http.StatusOK, gin.H{
		"business":     biz,
		"rating":       stats.Avg,
		"review_count": stats.Count,
	})
}

func (h *PublicHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.db.
		Where("active = true").
		Order("name ASC").
		Find(&categories).Error; err != nil {

		httperr.Internal(c, "failed_to_list_categories", "Could not list categories.")
		return
	}

	httpresp.List(c, categories)
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	slug := c.Param("slug")

	var biz models.Business
	if err := h.db.Where("slug = ? AND status = ?", slug, "active").First(&biz).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.
		Where("business_id = ? AND active = true", biz.ID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business": biz,
		"services": services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	slug := c.Param("slug")
	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")

	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "Both date and service_id are required.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service.")
		return
	}

	var biz models.Business
	if err := h.db.Where("slug = ? AND status = ?", slug, "active").First(&biz).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	date, err := time.ParseInLocation(
		"2006-01-02",
		dateStr,
		timezone.Location(biz.Timezone),
	)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	ctx := c.Request.Context()

	if slots, ok := h.availCche.Get(ctx, biz.ID, uint(serviceID), dateStr); ok {
		c.JSON(http.StatusOK, gin.H{"date": dateStr, "slots": slots})
		return
	}

	slots, err := h.availUC.Execute(ctx, domain.AvailabilityInput{
		BusinessID: biz.ID,
		ServiceID:  uint(serviceID),
		Date:       date,
	})

	if err != nil {
		if httperr.IsBusiness(err, "service_not_found") {
			httperr.BadRequest(c, "service_not_found", "Invalid service.")
			return
		}

		httperr.Internal(c, "availability_failed", "Could not compute availability.")
		return
	}

	h.availCche.Set(ctx, biz.ID, uint(serviceID), dateStr, slots)

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}

////////////////////////////////////////////////////////
// CREATE BOOKING (GUEST)
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	slug := c.Param("slug")

	var biz models.Business
	if err := h.db.Where("slug = ?", slug).First(&biz).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	var req PublicCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	bk, err := h.createUC.Execute(
		c.Request.Context(),
		ucBooking.CreateBookingInput{
			BusinessID:    biz.ID,
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

	h.availCche.Invalidate(c.Request.Context(), biz.ID)
	h.notifier.Notify(
		c.Request.Context(),
		biz.OwnerID,
		notify.TypeBookingCreated,
		"New booking for "+bk.StartTime.Format("2006-01-02 15:04"),
	)

	c.JSON(http.StatusCreated, bk)
}

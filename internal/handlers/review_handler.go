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
)

type ReviewHandler struct {
	db *gorm.DB
}

func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ======================================================
// PUBLIC — LIST
// ======================================================

func (h *ReviewHandler) ListForBusiness(c *gin.Context) {
	slug := c.Param("slug")

	var biz models.Business
	if err := h.db.Where("slug = ? AND status = ?", slug, "active").First(&biz).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	var reviews []models.Review
	if err := h.db.
		Preload("User").
		Where("business_id = ?", biz.ID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {

		httperr.Internal(c, "failed_to_list_reviews", "Could not list reviews.")
		return
	}

	httpresp.List(c, reviews)
}

// ======================================================
// CUSTOMER — CREATE
// ======================================================

func (h *ReviewHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	slug := c.Param("slug")

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Rating must be between 1 and 5.")
		return
	}

	var biz models.Business
	if err := h.db.Where("slug = ? AND status = ?", slug, "active").First(&biz).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	if biz.OwnerID == userID {
		httperr.BadRequest(c, "own_business", "You cannot review your own business.")
		return
	}

	review := models.Review{
		BusinessID: biz.ID,
		UserID:     userID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
	}

	if err := h.db.Create(&review).Error; err != nil {
		// The unique index covers the one-review-per-user rule.
		if strings.Contains(err.Error(), "idx_review_business_user") {
			httperr.Conflict(c, "already_reviewed", "You have already reviewed this business.")
			return
		}

		httperr.Internal(c, "failed_to_create_review", "Could not save the review.")
		return
	}

	h.db.Preload("User").First(&review, review.ID)

	c.JSON(http.StatusCreated, review)
}

// ======================================================
// AUTHOR / ADMIN — DELETE
// ======================================================

func (h *ReviewHandler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid review id.")
		return
	}

	var review models.Review
	if err := h.db.First(&review, uint(id)).Error; err != nil {
		httperr.NotFound(c, "review_not_found", "Review not found.")
		return
	}

	if review.UserID != userID && role != "admin" {
		httperr.Forbidden(c, "not_allowed", "You can only delete your own reviews.")
		return
	}

	if err := h.db.Delete(&review).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_review", "Could not delete the review.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/middleware"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/storage"
	"github.com/townbook-za/townbook/internal/timezone"
)

type BusinessHandler struct {
	db       *gorm.DB
	uploader *storage.Uploader
}

func NewBusinessHandler(db *gorm.DB, uploader *storage.Uploader) *BusinessHandler {
	return &BusinessHandler{db: db, uploader: uploader}
}

type UpdateBusinessRequest struct {
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Email             *string `json:"email,omitempty"`
	Address           *string `json:"address,omitempty"`
	City              *string `json:"city,omitempty"`
	Timezone          *string `json:"timezone,omitempty"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes,omitempty"`
	CategoryIDs       *[]uint `json:"category_ids,omitempty"`
}

func (h *BusinessHandler) getOwn(c *gin.Context) (*models.Business, bool) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var biz models.Business
	if err := h.db.Preload("Categories").First(&biz, businessID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "business_not_found", "Business not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_business", "Could not load the business.")
		return nil, false
	}
	return &biz, true
}

func (h *BusinessHandler) GetMeBusiness(c *gin.Context) {
	biz, ok := h.getOwn(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, biz)
}

func (h *BusinessHandler) UpdateMeBusiness(c *gin.Context) {
	biz, ok := h.getOwn(c)
	if !ok {
		return
	}

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.Name != nil {
		biz.Name = *req.Name
	}
	if req.Description != nil {
		biz.Description = *req.Description
	}
	if req.Phone != nil {
		biz.Phone = *req.Phone
	}
	if req.Email != nil {
		biz.Email = *req.Email
	}
	if req.Address != nil {
		biz.Address = *req.Address
	}
	if req.City != nil {
		biz.City = *req.City
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone name.")
			return
		}
		biz.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Minimum advance must be zero or positive (minutes).")
			return
		}
		biz.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if req.CategoryIDs != nil {
		var cats []models.Category
		if len(*req.CategoryIDs) > 0 {
			if err := h.db.Where("id IN ? AND active = true", *req.CategoryIDs).Find(&cats).Error; err != nil {
				httperr.Internal(c, "failed_to_load_categories", "Could not load categories.")
				return
			}
		}
		if err := h.db.Model(biz).Association("Categories").Replace(cats); err != nil {
			httperr.Internal(c, "failed_to_set_categories", "Could not update categories.")
			return
		}
	}

	if err := h.db.Save(biz).Error; err != nil {
		httperr.Internal(c, "failed_to_update_business", "Could not save the business.")
		return
	}

	c.JSON(http.StatusOK, biz)
}

// UploadLogo accepts a multipart image, normalizes it to webp and stores
// it in object storage.
func (h *BusinessHandler) UploadLogo(c *gin.Context) {
	biz, ok := h.getOwn(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("logo")
	if err != nil {
		httperr.BadRequest(c, "missing_file", "A 'logo' file field is required.")
		return
	}
	defer file.Close()

	data, err := storage.EncodeLogoWebp(file)
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "The uploaded file is not a supported image.")
		return
	}

	url, err := h.uploader.UploadLogo(c.Request.Context(), biz.ID, data)
	if err != nil {
		httperr.Internal(c, "upload_failed", "Could not store the logo.")
		return
	}

	biz.LogoURL = url
	if err := h.db.Save(biz).Error; err != nil {
		httperr.Internal(c, "failed_to_update_business", "Could not save the business.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logo_url": url})
}

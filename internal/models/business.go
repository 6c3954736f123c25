package models

import "time"

type Business struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OwnerID uint `gorm:"index" json:"owner_id"`
	Owner   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"size:500" json:"description"`
	Phone       string `gorm:"size:20" json:"phone"`
	Email       string `gorm:"size:100" json:"email"`
	Address     string `gorm:"size:255" json:"address"`
	City        string `gorm:"size:100" json:"city"`
	LogoURL     string `gorm:"size:255" json:"logo_url"`

	Categories []Category `gorm:"many2many:business_categories;" json:"categories"`

	Status            string `gorm:"size:20;default:'pending'" json:"status"`
	Timezone          string `gorm:"size:50" json:"timezone"`
	MinAdvanceMinutes int    `gorm:"default:120" json:"min_advance_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

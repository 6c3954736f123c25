package models

import "time"

type Review struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BusinessID uint `gorm:"index:idx_review_business_user,unique" json:"business_id"`
	UserID     uint `gorm:"index:idx_review_business_user,unique" json:"user_id"`
	User       User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"size:500" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

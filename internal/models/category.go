package models

import "time"

type Category struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Slug   string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Active bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import "time"

type Message struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SenderID   uint `gorm:"index" json:"sender_id"`
	ReceiverID uint `gorm:"index" json:"receiver_id"`

	Content string `gorm:"size:1000;not null" json:"content"`
	Read    bool   `gorm:"default:false" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}

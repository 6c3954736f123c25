package models

import "time"

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint    `gorm:"index" json:"booking_id"`
	Booking   Booking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Amount float64 `json:"amount"`
	Status string  `gorm:"size:20;default:'pending'" json:"status"`

	// MerchantRef is our side of the transaction (m_payment_id),
	// GatewayRef the gateway's (pf_payment_id).
	MerchantRef string `gorm:"size:64;uniqueIndex" json:"merchant_ref"`
	GatewayRef  string `gorm:"size:64" json:"gateway_ref"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// Payment represents a provider-initiated payment request tied to a booking.
// Cancelling a pending payment removes the row entirely, so there is no
// CANCELLED status.
type Payment struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	BookingID     uint          `json:"booking_id" gorm:"not null;index"`
	Booking       Booking       `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	ProviderID    uint          `json:"provider_id" gorm:"not null;index"`
	Provider      User          `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	SeekerID      uint          `json:"seeker_id" gorm:"not null;index"`
	Seeker        User          `json:"seeker,omitempty" gorm:"foreignKey:SeekerID"`
	ServiceID     *uint         `json:"service_id"`
	Amount        float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	Method        string        `json:"method" gorm:"size:50"`
	TransactionID *string       `json:"transaction_id" gorm:"size:100"`
	Status        PaymentStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING','COMPLETED')"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// PaymentCreate represents the request structure for requesting a payment
type PaymentCreate struct {
	BookingID uint    `json:"booking_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Method    string  `json:"method"`
}

// PaymentProcess represents the request structure for confirming a payment
type PaymentProcess struct {
	TransactionID string `json:"transaction_id"`
}

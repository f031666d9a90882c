package models

import (
	"encoding/json"
	"time"
)

// Notification types
const (
	NotificationNewOffer         = "NEW_OFFER"
	NotificationOfferAccepted    = "OFFER_ACCEPTED"
	NotificationPaymentRequest   = "PAYMENT_REQUEST"
	NotificationPaymentCompleted = "PAYMENT_COMPLETED"
	NotificationRatingReceived   = "RATING_RECEIVED"
	NotificationOrderCancelled   = "ORDER_CANCELLED"
)

// Notification is immutable once created except for the read flag
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message" gorm:"not null"`
	Type      string    `json:"type" gorm:"not null"`
	Data      string    `json:"data" gorm:"type:text"` // JSON payload keyed by type
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// NotificationPayload is the structured form of the Data column. Only the
// fields relevant to the notification type are set.
type NotificationPayload struct {
	RequestID  uint    `json:"request_id,omitempty"`
	OfferID    uint    `json:"offer_id,omitempty"`
	BookingID  uint    `json:"booking_id,omitempty"`
	PaymentID  uint    `json:"payment_id,omitempty"`
	ProviderID uint    `json:"provider_id,omitempty"`
	SeekerID   uint    `json:"seeker_id,omitempty"`
	RaterID    uint    `json:"rater_id,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Rating     int     `json:"rating,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	ActorName  string  `json:"actor_name,omitempty"`
}

// Encode marshals the payload for the Data column
func (p NotificationPayload) Encode() string {
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Payload decodes the Data column; a malformed payload yields the zero value
func (n *Notification) Payload() NotificationPayload {
	var p NotificationPayload
	if n.Data != "" {
		_ = json.Unmarshal([]byte(n.Data), &p)
	}
	return p
}

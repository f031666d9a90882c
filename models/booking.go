package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusRequested BookingStatus = "REQUESTED"
	BookingStatusApproved  BookingStatus = "APPROVED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking represents a confirmed engagement between a seeker and a provider.
// ServiceID is null for bookings that originate from an accepted offer.
type Booking struct {
	ID                 uint          `json:"id" gorm:"primaryKey"`
	ServiceID          *uint         `json:"service_id"`
	Service            *Service      `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	SeekerID           uint          `json:"seeker_id" gorm:"not null;index"`
	Seeker             User          `json:"seeker,omitempty" gorm:"foreignKey:SeekerID"`
	ProviderID         uint          `json:"provider_id" gorm:"not null;index"`
	Provider           User          `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Price              float64       `json:"price" gorm:"type:decimal(10,2);not null"`
	ScheduledTime      time.Time     `json:"scheduled_time"`
	Note               string        `json:"note" gorm:"type:text"`
	Status             BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'REQUESTED';check:status IN ('REQUESTED','APPROVED','COMPLETED','REJECTED','CANCELLED')"`
	CancellationReason *string       `json:"cancellation_reason" gorm:"type:text"`
	CreatedAt          time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// IsTerminal reports whether the booking can no longer change state
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusCompleted, BookingStatusRejected, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// CounterpartyID returns the other party of the booking
func (b *Booking) CounterpartyID(userID uint) uint {
	if b.SeekerID == userID {
		return b.ProviderID
	}
	return b.SeekerID
}

// IsParty reports whether the user is one of the two booking parties
func (b *Booking) IsParty(userID uint) bool {
	return b.SeekerID == userID || b.ProviderID == userID
}

// BookingCreate represents the request structure for booking a listed service
type BookingCreate struct {
	ServiceID     uint      `json:"service_id" binding:"required"`
	ScheduledTime time.Time `json:"scheduled_time" binding:"required"`
	Note          string    `json:"note"`
}

// BookingCancel represents the request structure for cancelling a booking
type BookingCancel struct {
	Reason  string `json:"reason" binding:"required"`
	Details string `json:"details"`
}
